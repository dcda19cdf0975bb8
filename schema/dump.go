package schema

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/fxamacker/cbor/v2"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// Dump writes a single-line text rendering of v. Records print in schema
// field order, so equal values always render identically.
func Dump(w io.Writer, v Value) error {
	bb := s2proto.GetByteBuffer()
	defer s2proto.PutByteBuffer(bb)
	if err := dumpValue(bb, v, 0); err != nil {
		return err
	}
	_, err := w.Write(bb.Bytes())
	return err
}

// Sprint returns the Dump rendering of v.
func Sprint(v Value) string {
	bb := s2proto.GetByteBuffer()
	defer s2proto.PutByteBuffer(bb)
	if err := dumpValue(bb, v, 0); err != nil {
		return "<" + err.Error() + ">"
	}
	return bb.String()
}

func dumpValue(bb *s2proto.ByteBuffer, v Value, depth int) error {
	if depth > DefaultMaxDepth {
		return s2proto.ErrRecursion
	}
	switch x := v.(type) {
	case nil:
		bb.WriteString("null")
	case bool:
		bb.WriteString(strconv.FormatBool(x))
	case int64:
		bb.WriteInt(x)
	case float32:
		bb.WriteString(formatFloat(float64(x), 32))
	case float64:
		bb.WriteString(formatFloat(x, 64))
	case []byte:
		dumpBytes(bb, x)
	case BitVector:
		bb.WriteString("bits(")
		bb.WriteInt(int64(x.Len))
		bb.WriteString(", ")
		bb.WriteHex(x.Data)
		bb.WriteByte(')')
	case []Value:
		bb.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				bb.WriteString(", ")
			}
			if err := dumpValue(bb, e, depth+1); err != nil {
				return err
			}
		}
		bb.WriteByte(']')
	case *Record:
		bb.WriteByte('{')
		i := 0
		for k, e := range x.AllFromFront() {
			if i > 0 {
				bb.WriteString(", ")
			}
			i++
			bb.WriteString(k)
			bb.WriteString(": ")
			if err := dumpValue(bb, e, depth+1); err != nil {
				return err
			}
		}
		bb.WriteByte('}')
	case Variant:
		bb.WriteString(x.Name)
		bb.WriteByte('(')
		if err := dumpValue(bb, x.Value, depth+1); err != nil {
			return err
		}
		bb.WriteByte(')')
	default:
		return fmt.Errorf("schema: cannot dump %T", v)
	}
	return nil
}

// dumpBytes prints printable UTF-8 as a quoted string and anything else as hex.
func dumpBytes(bb *s2proto.ByteBuffer, b []byte) {
	if s2proto.IsPrintable(b) {
		bb.WriteString(strconv.Quote(string(b)))
		return
	}
	bb.WriteHex(b)
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// MarshalValue encodes v as deterministic CBOR. Records become maps, a
// choice becomes a one-entry map from variant name to value, and a bit
// array becomes the pair [len, data].
func MarshalValue(v Value) ([]byte, error) {
	x, err := toCBOR(v, 0)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(x)
}

func toCBOR(v Value, depth int) (any, error) {
	if depth > DefaultMaxDepth {
		return nil, s2proto.ErrRecursion
	}
	switch x := v.(type) {
	case nil, bool, int64, float32, float64, []byte:
		return x, nil
	case BitVector:
		return []any{int64(x.Len), x.Data}, nil
	case []Value:
		out := make([]any, len(x))
		for i, e := range x {
			c, err := toCBOR(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	case *Record:
		out := make(map[string]any, x.Len())
		for k, e := range x.AllFromFront() {
			c, err := toCBOR(e, depth+1)
			if err != nil {
				return nil, err
			}
			out[k] = c
		}
		return out, nil
	case Variant:
		c, err := toCBOR(x.Value, depth+1)
		if err != nil {
			return nil, err
		}
		return map[string]any{x.Name: c}, nil
	}
	return nil, fmt.Errorf("schema: cannot marshal %T", v)
}

// Diagnose renders CBOR produced by MarshalValue in diagnostic notation.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
