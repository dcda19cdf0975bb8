package s2proto

import (
	"encoding/binary"
	"math"
)

// The Append functions below produce byte-aligned values. They mirror the
// ReadXxxxBytes family and exist so that fixtures and round-trip tests do
// not have to spell out wire bytes by hand.

// AppendStructHeader appends a struct tag and field count. Each field
// follows as AppendFieldTag plus a value.
func AppendStructHeader(b []byte, fields int) []byte {
	return AppendVLQ(append(b, byte(TagStruct)), int64(fields))
}

// AppendFieldTag appends a struct field tag.
func AppendFieldTag(b []byte, tag int64) []byte { return AppendVLQ(b, tag) }

// AppendArrayHeader appends an array tag and element count.
func AppendArrayHeader(b []byte, n int) []byte {
	return AppendVLQ(append(b, byte(TagArray)), int64(n))
}

// AppendChoiceHeader appends a choice tag and variant selector. The
// variant's value follows.
func AppendChoiceHeader(b []byte, tag int64) []byte {
	return AppendVLQ(append(b, byte(TagChoice)), tag)
}

// AppendOptionalHeader appends an optional tag and presence byte.
func AppendOptionalHeader(b []byte, present bool) []byte {
	b = append(b, byte(TagOptional))
	if present {
		return append(b, 1)
	}
	return append(b, 0)
}

// AppendBlob appends a blob tag, length and bytes.
func AppendBlob(b []byte, data []byte) []byte {
	b = AppendVLQ(append(b, byte(TagBlob)), int64(len(data)))
	return append(b, data...)
}

// AppendBitArray appends a bit array of n bits held in data.
func AppendBitArray(b []byte, n int, data []byte) []byte {
	b = AppendVLQ(append(b, byte(TagBitArray)), int64(n))
	return append(b, data[:(n+7)/8]...)
}

// AppendBool appends a bool
func AppendBool(b []byte, v bool) []byte {
	b = append(b, byte(TagBool))
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

// AppendFourCC appends a fourcc
func AppendFourCC(b []byte, v [4]byte) []byte {
	return append(append(b, byte(TagFourCC)), v[:]...)
}

// AppendReal32 appends a float32
func AppendReal32(b []byte, f float32) []byte {
	b = append(b, byte(TagFourCC))
	return binary.BigEndian.AppendUint32(b, math.Float32bits(f))
}

// AppendReal64 appends a float64
func AppendReal64(b []byte, f float64) []byte {
	b = append(b, byte(TagReal64))
	return binary.BigEndian.AppendUint64(b, math.Float64bits(f))
}
