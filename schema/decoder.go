package schema

import (
	"fmt"

	"go.uber.org/zap"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// DefaultMaxDepth bounds schema nesting while decoding.
const DefaultMaxDepth = 512

// Decoder interprets a Table. It holds no per-call state and is safe for
// concurrent use.
type Decoder struct {
	table    *Table
	log      *zap.Logger
	maxDepth int
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger used for decode tracing. Tracing is emitted at
// debug level only.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMaxDepth sets the nesting limit. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxDepth = n
		}
	}
}

// NewDecoder returns a Decoder for t. The table is not copied and must not
// be modified while the decoder is in use.
func NewDecoder(t *Table, opts ...Option) *Decoder {
	d := &Decoder{table: t, log: Logger(), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Table returns the decoder's type table.
func (d *Decoder) Table() *Table { return d.table }

func (d *Decoder) trace(msg string, typeid int, ti *TypeInfo, fields ...zap.Field) {
	if ce := d.log.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(append(fields, zap.Int("type", typeid), zap.Stringer("kind", ti.Kind))...)
	}
}

// DecodeVersioned decodes one byte-aligned instance of typeid from b and
// returns the remaining bytes. On error b is returned unchanged.
func (d *Decoder) DecodeVersioned(typeid int, b []byte) (Value, []byte, error) {
	return d.versioned(typeid, b, 0)
}

// DecodePacked decodes one bit-packed instance of typeid at c and returns
// the advanced cursor. On error c is returned unchanged.
func (d *Decoder) DecodePacked(typeid int, c s2proto.BitCursor) (Value, s2proto.BitCursor, error) {
	return d.packed(typeid, c, 0)
}

func (d *Decoder) versioned(typeid int, b []byte, depth int) (Value, []byte, error) {
	if depth > d.maxDepth {
		return nil, b, s2proto.ErrRecursion
	}
	ti, err := d.table.Type(typeid)
	if err != nil {
		return nil, b, err
	}

	switch ti.Kind {
	case KindNull:
		return nil, b, nil
	case KindBool:
		v, o, err := s2proto.ReadBoolBytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindInt:
		v, o, err := s2proto.ReadTaggedVLQBytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindBlob:
		v, o, err := s2proto.ReadBlobBytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindBitArray:
		n, v, o, err := s2proto.ReadBitArrayBytes(b)
		if err != nil {
			return nil, b, err
		}
		return BitVector{Len: n, Data: v}, o, nil
	case KindFourCC:
		v, o, err := s2proto.ReadFourCCBytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindReal32:
		v, o, err := s2proto.ReadReal32Bytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindReal64:
		v, o, err := s2proto.ReadReal64Bytes(b)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindArray:
		v, o, err := s2proto.ReadArrayBytes(b, s2proto.AnySize, func(b []byte) (Value, []byte, error) {
			return d.versioned(ti.Elem, b, depth+1)
		})
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindOptional:
		present, o, err := s2proto.ReadOptionalBytes(b)
		if err != nil {
			return nil, b, err
		}
		if !present {
			return nil, o, nil
		}
		v, o, err := d.versioned(ti.Elem, o, depth+1)
		if err != nil {
			return nil, b, err
		}
		return v, o, nil
	case KindChoice:
		var got Variant
		variants := make([]s2proto.ChoiceVariant, len(ti.Fields))
		for i := range ti.Fields {
			f := &ti.Fields[i]
			variants[i] = s2proto.ChoiceVariant{Name: f.Name, Tag: f.Tag, Decode: func(b []byte) ([]byte, error) {
				v, o, err := d.versioned(f.Type, b, depth+1)
				got = Variant{Name: f.Name, Tag: f.Tag, Value: v}
				return o, err
			}}
		}
		_, o, err := s2proto.ReadChoiceBytes(b, variants)
		if err != nil {
			return nil, b, err
		}
		return got, o, nil
	case KindStruct:
		return d.versionedStruct(typeid, ti, b, depth)
	}
	return nil, b, &TableError{Type: typeid, Reason: fmt.Sprintf("unknown kind %s", ti.Kind)}
}

func (d *Decoder) versionedStruct(typeid int, ti *TypeInfo, b []byte, depth int) (Value, []byte, error) {
	values := make([]Value, len(ti.Fields))
	fields := make([]s2proto.StructField, len(ti.Fields))
	for i := range ti.Fields {
		f := &ti.Fields[i]
		fields[i] = s2proto.StructField{
			Name:     f.Name,
			Tag:      f.Tag,
			Optional: d.table.fieldOptional(f),
			Decode: func(b []byte) ([]byte, error) {
				v, o, err := d.versioned(f.Type, b, depth+1)
				if err != nil {
					return b, err
				}
				values[i] = v
				d.trace("field", f.Type, &d.table.Types[f.Type], zap.String("name", f.Name), zap.Int64("tag", f.Tag))
				return o, nil
			},
		}
	}
	o, err := s2proto.ReadStructBytes(b, fields)
	if err != nil {
		return nil, b, err
	}
	d.trace("struct", typeid, ti, zap.Int("fields", len(ti.Fields)))
	return assemble(ti, values), o, nil
}

func (d *Decoder) packed(typeid int, c s2proto.BitCursor, depth int) (Value, s2proto.BitCursor, error) {
	if depth > d.maxDepth {
		return nil, c, s2proto.ErrRecursion
	}
	ti, err := d.table.Type(typeid)
	if err != nil {
		return nil, c, err
	}

	switch ti.Kind {
	case KindNull:
		return nil, c, nil
	case KindBool:
		v, o, err := s2proto.ReadPackedBool(c)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindInt:
		v, o, err := s2proto.ReadPackedBounded(c, ti.Bounds)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindBlob:
		v, o, err := s2proto.ReadPackedBlob(c, ti.Bounds)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindBitArray:
		n, v, o, err := s2proto.ReadPackedBitArray(c, ti.Bounds)
		if err != nil {
			return nil, c, err
		}
		return BitVector{Len: n, Data: v}, o, nil
	case KindFourCC:
		v, o, err := s2proto.ReadPackedFourCC(c)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindReal32:
		v, o, err := s2proto.ReadPackedReal32(c)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindReal64:
		v, o, err := s2proto.ReadPackedReal64(c)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindArray:
		v, o, err := s2proto.ReadPackedArray(c, ti.Bounds, s2proto.AnySize, func(c s2proto.BitCursor) (Value, s2proto.BitCursor, error) {
			return d.packed(ti.Elem, c, depth+1)
		})
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindOptional:
		present, o, err := s2proto.ReadPackedOptional(c)
		if err != nil {
			return nil, c, err
		}
		if !present {
			return nil, o, nil
		}
		v, o, err := d.packed(ti.Elem, o, depth+1)
		if err != nil {
			return nil, c, err
		}
		return v, o, nil
	case KindChoice:
		var got Variant
		variants := make([]s2proto.PackedVariant, len(ti.Fields))
		for i := range ti.Fields {
			f := &ti.Fields[i]
			variants[i] = s2proto.PackedVariant{Name: f.Name, Tag: f.Tag, Decode: func(c s2proto.BitCursor) (s2proto.BitCursor, error) {
				v, o, err := d.packed(f.Type, c, depth+1)
				got = Variant{Name: f.Name, Tag: f.Tag, Value: v}
				return o, err
			}}
		}
		_, o, err := s2proto.ReadPackedChoice(c, ti.Bounds, variants)
		if err != nil {
			return nil, c, err
		}
		return got, o, nil
	case KindStruct:
		values := make([]Value, len(ti.Fields))
		fields := make([]s2proto.PackedField, len(ti.Fields))
		for i := range ti.Fields {
			f := &ti.Fields[i]
			fields[i] = s2proto.PackedField{Name: f.Name, Decode: func(c s2proto.BitCursor) (s2proto.BitCursor, error) {
				v, o, err := d.packed(f.Type, c, depth+1)
				if err != nil {
					return c, err
				}
				values[i] = v
				d.trace("field", f.Type, &d.table.Types[f.Type], zap.String("name", f.Name), zap.Int("bit", c.Offset()))
				return o, nil
			}}
		}
		o, err := s2proto.ReadPackedStruct(c, fields)
		if err != nil {
			return nil, c, err
		}
		d.trace("struct", typeid, ti, zap.Int("fields", len(ti.Fields)))
		return assemble(ti, values), o, nil
	}
	return nil, c, &TableError{Type: typeid, Reason: fmt.Sprintf("unknown kind %s", ti.Kind)}
}

// assemble builds the record for a decoded struct in schema field order.
// A __parent field that decoded to a record has its fields merged in; any
// other parent value replaces the record when it is the only field.
func assemble(ti *TypeInfo, values []Value) Value {
	r := NewRecord(len(ti.Fields))
	for i := range ti.Fields {
		f := &ti.Fields[i]
		if f.Name != ParentField {
			r.Set(f.Name, values[i])
			continue
		}
		switch parent := values[i].(type) {
		case *Record:
			for k, v := range parent.AllFromFront() {
				r.Set(k, v)
			}
		default:
			if len(ti.Fields) == 1 {
				return parent
			}
			r.Set(f.Name, parent)
		}
	}
	return r
}
