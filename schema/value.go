package schema

import (
	"github.com/elliotchance/orderedmap/v3"
)

// Value is a decoded instance. Its dynamic type follows the schema kind:
//
//	null      nil
//	bool      bool
//	int       int64
//	blob      []byte
//	bitarray  BitVector
//	array     []Value
//	optional  nil or the element's value
//	struct    *Record
//	choice    Variant
//	fourcc    []byte (4 bytes)
//	real32    float32
//	real64    float64
type Value = any

// Record is a decoded struct. Keys are field names in schema order, so two
// decodes of the same bytes iterate identically.
type Record = orderedmap.OrderedMap[string, Value]

// NewRecord returns an empty record with room for n fields.
func NewRecord(n int) *Record {
	return orderedmap.NewOrderedMapWithCapacity[string, Value](n)
}

// Variant is a decoded choice: the selected variant and its value.
type Variant struct {
	Name  string
	Tag   int64
	Value Value
}

// BitVector is a decoded bit array of Len bits. Data holds ceil(Len/8)
// bytes; a final partial byte keeps its bits in the low positions.
type BitVector struct {
	Len  int
	Data []byte
}

// IntField returns the named int64 field of a record.
func IntField(r *Record, name string) (int64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}
