package s2proto

import (
	"encoding/binary"
	"math"
)

// readLength reads a VLQ length prefix and narrows it to a non-negative count.
func readLength(b []byte) (uint32, []byte, error) {
	n, o, err := ReadVLQBytes(b)
	if err != nil {
		return 0, b, err
	}
	sz, err := Narrow[uint32](n)
	if err != nil {
		return 0, b, err
	}
	return sz, o, nil
}

// ReadArrayHeaderBytes reads an array tag and the element count.
func ReadArrayHeaderBytes(b []byte) (uint32, []byte, error) {
	o, err := ValidateArrayTag(b)
	if err != nil {
		return 0, b, err
	}
	n, o, err := readLength(o)
	if err != nil {
		return 0, b, err
	}
	return n, o, nil
}

// ReadArrayBytes reads a byte-aligned array, decoding each element with
// decode. elemSize is the in-memory size of one element and only feeds the
// pre-allocation clamp; the full stated count is always read.
//
// An element that consumes no input cannot bound the count, so once one
// makes no progress the elements still owed must not outnumber the bytes
// left.
func ReadArrayBytes[T any](b []byte, elemSize int, decode func([]byte) (T, []byte, error)) ([]T, []byte, error) {
	n, o, err := ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	out := make([]T, 0, initialCap(uint64(n), elemSize))
	for i := uint32(0); i < n; i++ {
		var v T
		before := len(o)
		v, o, err = decode(o)
		if err != nil {
			return nil, b, WrapError(err, int64(i))
		}
		if len(o) == before && uint64(n-i) > uint64(len(o)) {
			return nil, b, WrapError(errShort(int(n-i), len(o)), int64(i))
		}
		out = append(out, v)
	}
	return out, o, nil
}

// ReadPackedArray reads a bit-packed array: a biased length prefix, then
// that many elements. As with ReadArrayBytes, zero-width elements may not
// be owed in greater number than the bits left.
func ReadPackedArray[T any](c BitCursor, length Bounds, elemSize int, decode func(BitCursor) (T, BitCursor, error)) ([]T, BitCursor, error) {
	n, o, err := ReadPackedBounded(c, length)
	if err != nil {
		return nil, c, err
	}
	if n < 0 {
		return nil, c, IntOverflow{Value: n, FailedBitsize: 64, Signed: false}
	}
	out := make([]T, 0, initialCap(uint64(n), elemSize))
	for i := int64(0); i < n; i++ {
		var v T
		before := o.Offset()
		v, o, err = decode(o)
		if err != nil {
			return nil, c, WrapError(err, i)
		}
		if o.Offset() == before && uint64(n-i) > uint64(o.Remaining()) {
			return nil, c, WrapError(errShort(int(n-i), o.Remaining()), i)
		}
		out = append(out, v)
	}
	return out, o, nil
}

// ReadBlobBytes reads a blob tag, a VLQ length and that many raw bytes. The
// returned slice is a copy.
func ReadBlobBytes(b []byte) ([]byte, []byte, error) {
	o, err := ValidateBlobTag(b)
	if err != nil {
		return nil, b, err
	}
	n, o, err := readLength(o)
	if err != nil {
		return nil, b, err
	}
	if uint64(len(o)) < uint64(n) {
		return nil, b, errShort(int(n), len(o))
	}
	out := make([]byte, n)
	copy(out, o[:n])
	return out, o[n:], nil
}

// ReadBitArrayBytes reads a bit array tag, a VLQ bit count and the
// ceil(count/8) bytes holding the bits.
func ReadBitArrayBytes(b []byte) (int, []byte, []byte, error) {
	o, err := ValidateBitArrayTag(b)
	if err != nil {
		return 0, nil, b, err
	}
	n, o, err := readLength(o)
	if err != nil {
		return 0, nil, b, err
	}
	nb := (uint64(n) + 7) / 8
	if uint64(len(o)) < nb {
		return 0, nil, b, errShort(int(nb), len(o))
	}
	out := make([]byte, nb)
	copy(out, o[:nb])
	return int(n), out, o[nb:], nil
}

// ReadPackedBlob reads a length prefix described by length, aligns to the
// next byte and copies that many bytes. Fixed-size handles are blobs whose
// length lives entirely in the offset, e.g. Bounds{Offset: 40, Bits: 0}.
func ReadPackedBlob(c BitCursor, length Bounds) ([]byte, BitCursor, error) {
	n, o, err := ReadPackedBounded(c, length)
	if err != nil {
		return nil, c, err
	}
	if n < 0 || n > math.MaxInt32 {
		return nil, c, IntOverflow{Value: n, FailedBitsize: 32, Signed: true}
	}
	data, o, err := o.ReadAlignedBytes(int(n))
	if err != nil {
		return nil, c, err
	}
	return data, o, nil
}

// ReadPackedString reads a bit-packed string type such as a user name or a
// file path. The content is returned as raw bytes; it is usually, but not
// always, valid UTF-8.
func ReadPackedString(c BitCursor, lengthBits int) ([]byte, BitCursor, error) {
	return ReadPackedBlob(c, Bounds{Bits: lengthBits})
}

// ReadPackedFixedBlob aligns to the next byte and copies n bytes.
func ReadPackedFixedBlob(c BitCursor, n int) ([]byte, BitCursor, error) {
	return c.ReadAlignedBytes(n)
}

// ReadPackedBitArray reads a length prefix and that many bits.
func ReadPackedBitArray(c BitCursor, length Bounds) (int, []byte, BitCursor, error) {
	n, o, err := ReadPackedBounded(c, length)
	if err != nil {
		return 0, nil, c, err
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, nil, c, IntOverflow{Value: n, FailedBitsize: 32, Signed: true}
	}
	data, o, err := o.ReadBitArray(int(n))
	if err != nil {
		return 0, nil, c, err
	}
	return int(n), data, o, nil
}

// ReadOptionalBytes reads an optional tag and the presence byte. The
// wrapped value, if present, follows.
func ReadOptionalBytes(b []byte) (bool, []byte, error) {
	o, err := ValidateOptTag(b)
	if err != nil {
		return false, b, err
	}
	if len(o) < 1 {
		return false, b, errShort(1, 0)
	}
	return o[0] != 0, o[1:], nil
}

// ReadOptionalValueBytes reads an optional and, when present, the wrapped
// value. Absent values decode to nil.
func ReadOptionalValueBytes[T any](b []byte, decode func([]byte) (T, []byte, error)) (*T, []byte, error) {
	present, o, err := ReadOptionalBytes(b)
	if err != nil {
		return nil, b, err
	}
	if !present {
		return nil, o, nil
	}
	v, o, err := decode(o)
	if err != nil {
		return nil, b, err
	}
	return &v, o, nil
}

// ReadPackedOptional reads the single presence bit of a bit-packed optional.
func ReadPackedOptional(c BitCursor) (bool, BitCursor, error) { return ReadPackedBool(c) }

// ReadPackedOptionalValue reads the presence bit and, when set, the wrapped value.
func ReadPackedOptionalValue[T any](c BitCursor, decode func(BitCursor) (T, BitCursor, error)) (*T, BitCursor, error) {
	present, o, err := ReadPackedOptional(c)
	if err != nil {
		return nil, c, err
	}
	if !present {
		return nil, o, nil
	}
	v, o, err := decode(o)
	if err != nil {
		return nil, c, err
	}
	return &v, o, nil
}

// ReadBoolBytes reads a bool tag and one byte; any nonzero byte is true.
func ReadBoolBytes(b []byte) (bool, []byte, error) {
	o, err := ValidateBoolTag(b)
	if err != nil {
		return false, b, err
	}
	if len(o) < 1 {
		return false, b, errShort(1, 0)
	}
	return o[0] != 0, o[1:], nil
}

// ReadFourCCBytes reads a fourcc tag and four bytes.
func ReadFourCCBytes(b []byte) ([]byte, []byte, error) {
	o, err := ValidateFourCCTag(b)
	if err != nil {
		return nil, b, err
	}
	if len(o) < 4 {
		return nil, b, errShort(4, len(o))
	}
	out := make([]byte, 4)
	copy(out, o[:4])
	return out, o[4:], nil
}

// ReadReal32Bytes reads a big-endian float32. It shares the fourcc tag.
func ReadReal32Bytes(b []byte) (float32, []byte, error) {
	o, err := ValidateFourCCTag(b)
	if err != nil {
		return 0, b, err
	}
	if len(o) < 4 {
		return 0, b, errShort(4, len(o))
	}
	return math.Float32frombits(binary.BigEndian.Uint32(o)), o[4:], nil
}

// ReadReal64Bytes reads a big-endian float64.
func ReadReal64Bytes(b []byte) (float64, []byte, error) {
	o, err := ValidateReal64Tag(b)
	if err != nil {
		return 0, b, err
	}
	if len(o) < 8 {
		return 0, b, errShort(8, len(o))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(o)), o[8:], nil
}
