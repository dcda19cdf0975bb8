package s2proto

import (
	"math"
	"unsafe"
)

// Integer is the set of types a decoded int64 may be narrowed into.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// Narrow converts v to T, failing with IntOverflow when v is not
// representable in T.
func Narrow[T Integer](v int64) (T, error) {
	t := T(v)
	if int64(t) != v || (t < 0) != (v < 0) {
		return 0, IntOverflow{Value: v, FailedBitsize: int(unsafe.Sizeof(t)) * 8, Signed: T(0)-1 < 0}
	}
	return t, nil
}

// ReadVLQBytes reads a byte-aligned variable-length integer without a type
// tag. The first byte carries the sign in bit 0 and the six low magnitude
// bits in bits 1-6; every following byte carries seven more magnitude bits.
// Bit 7 of each byte is the continuation flag.
//
// A magnitude that outgrows 64 bits mid-value fails with ErrVLQOverflow. One
// that fits 64 bits but not an int64 is read in full and fails with
// IntOverflow.
func ReadVLQBytes(b []byte) (int64, []byte, error) {
	if len(b) < 1 {
		return 0, b, errShort(1, 0)
	}
	lead := b[0]
	negative := lead&1 != 0
	mag := uint64(lead>>1) & 0x3f
	shift := uint(6)
	i := 1
	for cont := lead&0x80 != 0; cont; {
		if i >= len(b) {
			return 0, b, errShort(i+1, len(b))
		}
		c := b[i]
		i++
		chunk := uint64(c & 0x7f)
		if chunk != 0 && (shift >= 64 || chunk<<shift>>shift != chunk) {
			return 0, b, VLQOverflowError{}
		}
		if shift < 64 {
			mag |= chunk << shift
		}
		shift += 7
		cont = c&0x80 != 0
	}
	if negative {
		if mag > 1<<63 {
			return 0, b, IntOverflow{Value: math.MinInt64, FailedBitsize: 64, Signed: true}
		}
		return -int64(mag), b[i:], nil
	}
	if mag > math.MaxInt64 {
		return 0, b, IntOverflow{Value: math.MaxInt64, FailedBitsize: 64, Signed: true}
	}
	return int64(mag), b[i:], nil
}

// ReadTaggedVLQBytes reads an int type tag followed by a VLQ.
func ReadTaggedVLQBytes(b []byte) (int64, []byte, error) {
	o, err := ValidateIntTag(b)
	if err != nil {
		return 0, b, err
	}
	v, o, err := ReadVLQBytes(o)
	if err != nil {
		return 0, b, err
	}
	return v, o, nil
}

// readTaggedNarrow reads a tagged VLQ and narrows it to T.
func readTaggedNarrow[T Integer](b []byte) (T, []byte, error) {
	v, o, err := ReadTaggedVLQBytes(b)
	if err != nil {
		return 0, b, err
	}
	t, err := Narrow[T](v)
	if err != nil {
		return 0, b, err
	}
	return t, o, nil
}

// ReadTaggedInt64Bytes reads a tagged int64
func ReadTaggedInt64Bytes(b []byte) (int64, []byte, error) { return ReadTaggedVLQBytes(b) }

// ReadTaggedInt32Bytes reads a tagged int32
func ReadTaggedInt32Bytes(b []byte) (int32, []byte, error) { return readTaggedNarrow[int32](b) }

// ReadTaggedInt16Bytes reads a tagged int16
func ReadTaggedInt16Bytes(b []byte) (int16, []byte, error) { return readTaggedNarrow[int16](b) }

// ReadTaggedInt8Bytes reads a tagged int8
func ReadTaggedInt8Bytes(b []byte) (int8, []byte, error) { return readTaggedNarrow[int8](b) }

// ReadTaggedUint64Bytes reads a tagged uint64
func ReadTaggedUint64Bytes(b []byte) (uint64, []byte, error) { return readTaggedNarrow[uint64](b) }

// ReadTaggedUint32Bytes reads a tagged uint32
func ReadTaggedUint32Bytes(b []byte) (uint32, []byte, error) { return readTaggedNarrow[uint32](b) }

// ReadTaggedUint16Bytes reads a tagged uint16
func ReadTaggedUint16Bytes(b []byte) (uint16, []byte, error) { return readTaggedNarrow[uint16](b) }

// ReadTaggedUint8Bytes reads a tagged uint8
func ReadTaggedUint8Bytes(b []byte) (uint8, []byte, error) { return readTaggedNarrow[uint8](b) }

// AppendVLQ appends v in the byte-aligned VLQ form read by ReadVLQBytes.
func AppendVLQ(b []byte, v int64) []byte {
	var mag uint64
	var sign byte
	if v < 0 {
		mag = uint64(-v) // two's complement keeps MinInt64 exact
		sign = 1
	} else {
		mag = uint64(v)
	}
	lead := byte(mag&0x3f)<<1 | sign
	mag >>= 6
	if mag != 0 {
		lead |= 0x80
	}
	b = append(b, lead)
	for mag != 0 {
		c := byte(mag & 0x7f)
		mag >>= 7
		if mag != 0 {
			c |= 0x80
		}
		b = append(b, c)
	}
	return b
}

// AppendTaggedInt appends an int type tag and v.
func AppendTaggedInt(b []byte, v int64) []byte {
	return AppendVLQ(append(b, byte(TagInt)), v)
}
