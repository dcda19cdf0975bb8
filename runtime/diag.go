package s2proto

import (
	"encoding/hex"
	"math"
	"strconv"
)

// peekLimit caps how many bytes or bits the debug peeks render.
const peekLimit = 32

// PeekHex renders up to the first 32 bytes of b as hex, with a trailing
// ellipsis when b is longer. It is a debugging aid.
func PeekHex(b []byte) string {
	n := len(b)
	if n > peekLimit {
		n = peekLimit
	}
	s := hex.EncodeToString(b[:n])
	if len(b) > n {
		s += "..."
	}
	return s
}

// PeekBits renders the cursor position and up to the next 32 bits in read
// order, e.g. "@13 0110...". It never moves the cursor.
func (c BitCursor) PeekBits() string {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	bb.WriteByte('@')
	bb.WriteString(strconv.Itoa(c.off))
	bb.WriteByte(' ')
	n := c.Remaining()
	if n > peekLimit {
		n = peekLimit
	}
	o := c
	for i := 0; i < n; i++ {
		v, next, err := o.ReadBits(1)
		if err != nil {
			break
		}
		bb.WriteByte('0' + byte(v))
		o = next
	}
	if c.Remaining() > n {
		bb.WriteString("...")
	}
	return bb.String()
}

// DiagBytes renders the next byte-aligned value in a compact diagnostic
// notation and returns the remaining bytes. Byte-aligned values are
// self-describing, so no schema is needed:
//
//	{0: h'5332', 1: {0: 1, 1: 5}}   struct (field tag: value)
//	[1, 2]                          array
//	choice(1: 200)                  choice
//	none / some(x)                  optional
//	bits(12, h'ab0f')               bit array
func DiagBytes(b []byte) (string, []byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	rest, err := diagOneBuf(bb, b, 0)
	if err != nil {
		return "", b, err
	}
	return bb.String(), rest, nil
}

func diagOneBuf(buf *ByteBuffer, b []byte, depth int) ([]byte, error) {
	if depth > recursionLimit {
		return b, ErrRecursion
	}
	tag, err := NextTag(b)
	if err != nil {
		return b, err
	}
	switch tag {
	case TagInt:
		v, o, err := ReadTaggedVLQBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteInt(v)
		return o, nil
	case TagBlob:
		v, o, err := ReadBlobBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteHex(v)
		return o, nil
	case TagBitArray:
		n, v, o, err := ReadBitArrayBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString("bits(")
		buf.WriteInt(int64(n))
		buf.WriteString(", ")
		buf.WriteHex(v)
		buf.WriteByte(')')
		return o, nil
	case TagBool:
		v, o, err := ReadBoolBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(strconv.FormatBool(v))
		return o, nil
	case TagFourCC:
		v, o, err := ReadFourCCBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString("fourcc(")
		buf.WriteHex(v)
		buf.WriteByte(')')
		return o, nil
	case TagReal64:
		v, o, err := ReadReal64Bytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(formatFloat64Diag(v))
		return o, nil
	case TagOptional:
		present, o, err := ReadOptionalBytes(b)
		if err != nil {
			return b, err
		}
		if !present {
			buf.WriteString("none")
			return o, nil
		}
		buf.WriteString("some(")
		o, err = diagOneBuf(buf, o, depth+1)
		if err != nil {
			return b, err
		}
		buf.WriteByte(')')
		return o, nil
	case TagArray:
		n, o, err := ReadArrayHeaderBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteByte('[')
		for i := uint32(0); i < n; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			o, err = diagOneBuf(buf, o, depth+1)
			if err != nil {
				return b, err
			}
		}
		buf.WriteByte(']')
		return o, nil
	case TagChoice:
		o, err := ValidateChoiceTag(b)
		if err != nil {
			return b, err
		}
		sel, o, err := ReadVLQBytes(o)
		if err != nil {
			return b, err
		}
		buf.WriteString("choice(")
		buf.WriteInt(sel)
		buf.WriteString(": ")
		o, err = diagOneBuf(buf, o, depth+1)
		if err != nil {
			return b, err
		}
		buf.WriteByte(')')
		return o, nil
	case TagStruct:
		n, o, err := ReadStructHeaderBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteByte('{')
		for i := uint32(0); i < n; i++ {
			if i > 0 {
				buf.WriteString(", ")
			}
			var ftag int64
			ftag, o, err = ReadVLQBytes(o)
			if err != nil {
				return b, err
			}
			buf.WriteInt(ftag)
			buf.WriteString(": ")
			o, err = diagOneBuf(buf, o, depth+1)
			if err != nil {
				return b, err
			}
		}
		buf.WriteByte('}')
		return o, nil
	}
	return b, InvalidTagError{Got: byte(tag)}
}

// formatFloat64Diag returns a diagnostic string for float64
func formatFloat64Diag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
