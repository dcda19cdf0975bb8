package s2proto

import (
	"encoding/binary"
	"math"
)

// ReadPackedInt reads a bit-packed biased integer: bits wide on the wire,
// offset added afterwards. Both are schema constants; nothing about the
// encoding is self-describing. Int8, for example, is offset -128 over 8 bits.
func ReadPackedInt(c BitCursor, offset int64, bits int) (int64, BitCursor, error) {
	raw, o, err := c.ReadBits(bits)
	if err != nil {
		return 0, c, err
	}
	if raw > math.MaxInt64 {
		// Only a 64-bit field can get here; a negative bias may still bring it into range.
		if offset >= 0 || raw-uint64(-offset) > math.MaxInt64 {
			return 0, c, IntOverflow{Value: int64(raw), FailedBitsize: 64, Signed: true}
		}
		return int64(raw - uint64(-offset)), o, nil
	}
	v := int64(raw)
	if offset > 0 && v > math.MaxInt64-offset {
		return 0, c, IntOverflow{Value: v, FailedBitsize: 64, Signed: true}
	}
	return v + offset, o, nil
}

// ReadPackedBounded reads a biased integer described by Bounds.
func ReadPackedBounded(c BitCursor, bd Bounds) (int64, BitCursor, error) {
	return ReadPackedInt(c, bd.Offset, bd.Bits)
}

// readPackedNarrow reads a biased integer and narrows it to T.
func readPackedNarrow[T Integer](c BitCursor, offset int64, bits int) (T, BitCursor, error) {
	v, o, err := ReadPackedInt(c, offset, bits)
	if err != nil {
		return 0, c, err
	}
	t, err := Narrow[T](v)
	if err != nil {
		return 0, c, err
	}
	return t, o, nil
}

// ReadPackedInt8 reads a biased integer into an int8
func ReadPackedInt8(c BitCursor, offset int64, bits int) (int8, BitCursor, error) {
	return readPackedNarrow[int8](c, offset, bits)
}

// ReadPackedInt16 reads a biased integer into an int16
func ReadPackedInt16(c BitCursor, offset int64, bits int) (int16, BitCursor, error) {
	return readPackedNarrow[int16](c, offset, bits)
}

// ReadPackedInt32 reads a biased integer into an int32
func ReadPackedInt32(c BitCursor, offset int64, bits int) (int32, BitCursor, error) {
	return readPackedNarrow[int32](c, offset, bits)
}

// ReadPackedUint8 reads a biased integer into a uint8
func ReadPackedUint8(c BitCursor, offset int64, bits int) (uint8, BitCursor, error) {
	return readPackedNarrow[uint8](c, offset, bits)
}

// ReadPackedUint16 reads a biased integer into a uint16
func ReadPackedUint16(c BitCursor, offset int64, bits int) (uint16, BitCursor, error) {
	return readPackedNarrow[uint16](c, offset, bits)
}

// ReadPackedUint32 reads a biased integer into a uint32
func ReadPackedUint32(c BitCursor, offset int64, bits int) (uint32, BitCursor, error) {
	return readPackedNarrow[uint32](c, offset, bits)
}

// ReadPackedUint64 reads an unbiased field of up to 64 bits.
func ReadPackedUint64(c BitCursor, bits int) (uint64, BitCursor, error) {
	return c.ReadBits(bits)
}

// ReadPackedBool reads a single presence/truth bit.
func ReadPackedBool(c BitCursor) (bool, BitCursor, error) {
	v, o, err := c.ReadBits(1)
	if err != nil {
		return false, c, err
	}
	return v != 0, o, nil
}

// ReadPackedFourCC reads four unaligned bytes.
func ReadPackedFourCC(c BitCursor) ([]byte, BitCursor, error) {
	return c.ReadUnalignedBytes(4)
}

// ReadPackedReal32 reads a big-endian IEEE-754 float32 from four unaligned bytes.
func ReadPackedReal32(c BitCursor) (float32, BitCursor, error) {
	raw, o, err := c.ReadUnalignedBytes(4)
	if err != nil {
		return 0, c, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(raw)), o, nil
}

// ReadPackedReal64 reads a big-endian IEEE-754 float64 from eight unaligned bytes.
func ReadPackedReal64(c BitCursor) (float64, BitCursor, error) {
	raw, o, err := c.ReadUnalignedBytes(8)
	if err != nil {
		return 0, c, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(raw)), o, nil
}
