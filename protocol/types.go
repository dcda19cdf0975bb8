// Package protocol holds the replay types that every protocol build shares.
// They are written the way generated per-build code is: one struct per
// schema type, with DecodeVersioned for the byte-aligned encoding and
// DecodePacked for the bit-packed one.
package protocol

import (
	"fmt"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// Int8 is the signed byte, packed as 8 raw bits biased by -128.
type Int8 int8

var int8Bounds = s2proto.Bounds{Offset: -128, Bits: 8}

func (z *Int8) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	v, o, err := s2proto.ReadPackedInt8(c, int8Bounds.Offset, int8Bounds.Bits)
	if err != nil {
		return c, err
	}
	*z = Int8(v)
	return o, nil
}

func (z *Int8) DecodeVersioned(b []byte) ([]byte, error) {
	v, o, err := s2proto.ReadTaggedInt8Bytes(b)
	if err != nil {
		return b, err
	}
	*z = Int8(v)
	return o, nil
}

// SVarUint32Variant selects which width an SVarUint32 was written with.
type SVarUint32Variant uint8

const (
	MUint6 SVarUint32Variant = iota
	MUint14
	MUint22
	MUint32
)

var svarUint32Names = [...]string{"m_uint6", "m_uint14", "m_uint22", "m_uint32"}

func (v SVarUint32Variant) String() string {
	if int(v) < len(svarUint32Names) {
		return svarUint32Names[v]
	}
	return fmt.Sprintf("SVarUint32Variant(%d)", uint8(v))
}

// svarUint32Bits are the packed widths of each variant.
var svarUint32Bits = [...]int{6, 14, 22, 32}

// svarUint32Selector is the packed selector of SVarUint32.
var svarUint32Selector = s2proto.Bounds{Bits: 2}

// SVarUint32 is the variable width unsigned integer used for game loop
// deltas: a four way choice over 6, 14, 22 and 32 bit values.
type SVarUint32 struct {
	Variant SVarUint32Variant
	Value   uint32
}

func (z SVarUint32) String() string { return fmt.Sprintf("%s(%d)", z.Variant, z.Value) }

func (z *SVarUint32) DecodeVersioned(b []byte) ([]byte, error) {
	variants := make([]s2proto.ChoiceVariant, len(svarUint32Names))
	for i, name := range svarUint32Names {
		variants[i] = s2proto.ChoiceVariant{Name: name, Tag: int64(i), Decode: func(b []byte) (o []byte, err error) {
			z.Value, o, err = s2proto.ReadTaggedUint32Bytes(b)
			return
		}}
	}
	sel, o, err := s2proto.ReadChoiceBytes(b, variants)
	if err != nil {
		return b, err
	}
	z.Variant = SVarUint32Variant(sel)
	return o, nil
}

func (z *SVarUint32) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	variants := make([]s2proto.PackedVariant, len(svarUint32Names))
	for i, name := range svarUint32Names {
		bits := svarUint32Bits[i]
		variants[i] = s2proto.PackedVariant{Name: name, Tag: int64(i), Decode: func(c s2proto.BitCursor) (o s2proto.BitCursor, err error) {
			z.Value, o, err = s2proto.ReadPackedUint32(c, 0, bits)
			return
		}}
	}
	sel, o, err := s2proto.ReadPackedChoice(c, svarUint32Selector, variants)
	if err != nil {
		return c, err
	}
	z.Variant = SVarUint32Variant(sel)
	return o, nil
}

// Smd5 is an MD5 digest. Older builds wrote it as an optional byte array;
// current builds use the blob.
type Smd5 struct {
	DataDeprecated *[]uint8
	Data           []byte
}

var smd5Lengths = s2proto.Bounds{Offset: 16, Bits: 0}

func readUint8Elem(b []byte) (uint8, []byte, error) { return s2proto.ReadTaggedUint8Bytes(b) }

func (z *Smd5) DecodeVersioned(b []byte) ([]byte, error) {
	z.DataDeprecated = nil
	return s2proto.ReadStructBytes(b, []s2proto.StructField{
		{Name: "m_dataDeprecated", Tag: 0, Optional: true, Decode: func(b []byte) (o []byte, err error) {
			z.DataDeprecated, o, err = s2proto.ReadOptionalValueBytes(b, func(b []byte) ([]uint8, []byte, error) {
				return s2proto.ReadArrayBytes(b, s2proto.Uint8Size, readUint8Elem)
			})
			return
		}},
		{Name: "m_data", Tag: 1, Decode: func(b []byte) (o []byte, err error) {
			z.Data, o, err = s2proto.ReadBlobBytes(b)
			return
		}},
	})
}

func (z *Smd5) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	return s2proto.ReadPackedStruct(c, []s2proto.PackedField{
		{Name: "m_dataDeprecated", Decode: func(c s2proto.BitCursor) (o s2proto.BitCursor, err error) {
			z.DataDeprecated, o, err = s2proto.ReadPackedOptionalValue(c, func(c s2proto.BitCursor) ([]uint8, s2proto.BitCursor, error) {
				return s2proto.ReadPackedArray(c, smd5Lengths, s2proto.Uint8Size, func(c s2proto.BitCursor) (uint8, s2proto.BitCursor, error) {
					return s2proto.ReadPackedUint8(c, 0, 8)
				})
			})
			return
		}},
		{Name: "m_data", Decode: func(c s2proto.BitCursor) (o s2proto.BitCursor, err error) {
			z.Data, o, err = s2proto.ReadPackedBlob(c, smd5Lengths)
			return
		}},
	})
}

// CUserName is a player or clan name with an 8-bit length prefix. The bytes
// are not checked for valid UTF-8.
type CUserName struct {
	Value []byte
}

func (z CUserName) String() string { return string(z.Value) }

func (z *CUserName) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	v, o, err := s2proto.ReadPackedString(c, 8)
	if err != nil {
		return c, err
	}
	z.Value = v
	return o, nil
}

func (z *CUserName) DecodeVersioned(b []byte) ([]byte, error) {
	v, o, err := s2proto.ReadBlobBytes(b)
	if err != nil {
		return b, err
	}
	z.Value = v
	return o, nil
}

// CFilePath is a map or mod path with a 10-bit length prefix.
type CFilePath struct {
	Value []byte
}

func (z CFilePath) String() string { return string(z.Value) }

func (z *CFilePath) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	v, o, err := s2proto.ReadPackedString(c, 10)
	if err != nil {
		return c, err
	}
	z.Value = v
	return o, nil
}

func (z *CFilePath) DecodeVersioned(b []byte) ([]byte, error) {
	v, o, err := s2proto.ReadBlobBytes(b)
	if err != nil {
		return b, err
	}
	z.Value = v
	return o, nil
}

// CacheHandleSize is the fixed length of a depot cache handle.
const CacheHandleSize = 40

// CCacheHandle names a depot file: a 4 byte extension, a 4 byte region and
// a 32 byte hash. Its length is fixed, so the packed form carries no
// length bits at all.
type CCacheHandle struct {
	Value []byte
}

var cacheHandleBounds = s2proto.Bounds{Offset: CacheHandleSize, Bits: 0}

// Extension returns the file type, e.g. "s2ma".
func (z CCacheHandle) Extension() string {
	if len(z.Value) < 4 {
		return ""
	}
	return string(z.Value[:4])
}

// Region returns the depot region code with NUL padding removed.
func (z CCacheHandle) Region() string {
	if len(z.Value) < 8 {
		return ""
	}
	r := z.Value[4:8]
	for len(r) > 0 && r[len(r)-1] == 0 {
		r = r[:len(r)-1]
	}
	return string(r)
}

func (z *CCacheHandle) DecodePacked(c s2proto.BitCursor) (s2proto.BitCursor, error) {
	v, o, err := s2proto.ReadPackedBlob(c, cacheHandleBounds)
	if err != nil {
		return c, err
	}
	z.Value = v
	return o, nil
}

func (z *CCacheHandle) DecodeVersioned(b []byte) ([]byte, error) {
	v, o, err := s2proto.ReadBlobBytes(b)
	if err != nil {
		return b, err
	}
	z.Value = v
	return o, nil
}
