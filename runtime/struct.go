package s2proto

// StructField describes one field of a byte-aligned struct. A generated
// decoder builds a slice of these per call, with Decode and Default closing
// over the destination.
type StructField struct {
	Name     string
	Tag      int64
	Optional bool

	// Decode reads the field's value from b, stores it and returns the
	// remaining bytes.
	Decode func(b []byte) ([]byte, error)

	// Default, if set, is called for an optional field that never appeared.
	Default func()
}

// ReadStructHeaderBytes reads a struct tag and the field count that follows it.
func ReadStructHeaderBytes(b []byte) (uint32, []byte, error) {
	o, err := ValidateStructTag(b)
	if err != nil {
		return 0, b, err
	}
	n, o, err := ReadVLQBytes(o)
	if err != nil {
		return 0, b, err
	}
	sz, err := Narrow[uint32](n)
	if err != nil {
		return 0, b, err
	}
	return sz, o, nil
}

// ReadStructBytes decodes a byte-aligned struct. Fields may arrive in any
// order; each is keyed by its VLQ tag. A tag not in fields fails with
// UnknownTagError, a tag seen twice fails with DuplicateTagError, and a
// required field that never arrives fails with MissingFieldError.
func ReadStructBytes(b []byte, fields []StructField) ([]byte, error) {
	n, o, err := ReadStructHeaderBytes(b)
	if err != nil {
		return b, err
	}

	var small uint64
	var seen []bool
	if len(fields) > 64 {
		seen = make([]bool, len(fields))
	}
	isSeen := func(idx int) bool {
		if seen != nil {
			return seen[idx]
		}
		return small&(1<<uint(idx)) != 0
	}
	markSeen := func(idx int) {
		if seen != nil {
			seen[idx] = true
			return
		}
		small |= 1 << uint(idx)
	}

	for i := uint32(0); i < n; i++ {
		var tag int64
		tag, o, err = ReadVLQBytes(o)
		if err != nil {
			return b, err
		}
		idx := fieldIndex(fields, tag)
		if idx < 0 {
			return b, UnknownTagError{Tag: tag}
		}
		f := &fields[idx]
		if isSeen(idx) {
			return b, DuplicateTagError{Field: f.Name, Tag: tag}
		}
		markSeen(idx)
		o, err = f.Decode(o)
		if err != nil {
			return b, WrapError(err, f.Name)
		}
	}

	for idx := range fields {
		if isSeen(idx) {
			continue
		}
		f := &fields[idx]
		if !f.Optional {
			return b, MissingFieldError{Field: f.Name}
		}
		if f.Default != nil {
			f.Default()
		}
	}
	return o, nil
}

func fieldIndex(fields []StructField, tag int64) int {
	for i := range fields {
		if fields[i].Tag == tag {
			return i
		}
	}
	return -1
}

// PackedField is one positional field of a bit-packed struct.
type PackedField struct {
	Name   string
	Decode func(c BitCursor) (BitCursor, error)
}

// ReadPackedStruct decodes the fields of a bit-packed struct in order.
// There is no tag or count on the wire: the schema order is the wire order.
func ReadPackedStruct(c BitCursor, fields []PackedField) (BitCursor, error) {
	o := c
	for i := range fields {
		var err error
		o, err = fields[i].Decode(o)
		if err != nil {
			return c, WrapError(err, fields[i].Name)
		}
	}
	return o, nil
}
