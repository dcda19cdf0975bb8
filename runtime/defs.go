// Package s2proto is the support library for StarCraft II replay protocol decoders.
//
// Every per-version protocol module is a repetitive caller of the primitives in
// this package. Two wire encodings exist and are kept strictly apart:
//
//   - byte-aligned ("versioned") values are self-describing: each value starts
//     with a one-byte TypeTag and integers use a sign-in-low-bit VLQ.
//   - bit-packed values carry no tags: widths, biases and field order are fixed
//     by the schema, and integers are fixed-width biased fields read through a
//     BitCursor.
//
// This package defines the following "families" of functions:
//   - ReadXxxxBytes() reads a byte-aligned value from a []byte and returns the remaining bytes.
//   - ReadPackedXxxx() reads a bit-packed value from a BitCursor and returns the advanced cursor.
//   - AppendXxxx() appends a byte-aligned value to a []byte.
//   - (*BitWriter).WriteXxxx() appends a bit-packed value.
//
// All decoders are pure: the input is never modified and a failed read leaves
// nothing for the caller to resume from.
package s2proto

// TypeTag is the one-byte shape marker preceding every byte-aligned value.
type TypeTag byte

// Byte-aligned type tags.
const (
	TagArray    TypeTag = 0
	TagBitArray TypeTag = 1
	TagBlob     TypeTag = 2
	TagChoice   TypeTag = 3
	TagOptional TypeTag = 4
	TagStruct   TypeTag = 5
	TagBool     TypeTag = 6
	TagFourCC   TypeTag = 7 // also used for real32
	TagReal64   TypeTag = 8
	TagInt      TypeTag = 9
)

// String implements fmt.Stringer
func (t TypeTag) String() string {
	switch t {
	case TagArray:
		return "array"
	case TagBitArray:
		return "bitarray"
	case TagBlob:
		return "blob"
	case TagChoice:
		return "choice"
	case TagOptional:
		return "optional"
	case TagStruct:
		return "struct"
	case TagBool:
		return "bool"
	case TagFourCC:
		return "fourcc"
	case TagReal64:
		return "real64"
	case TagInt:
		return "int"
	default:
		return "<invalid>"
	}
}

// Bounds are the schema constants of a bit-packed integer: the value on the
// wire is Bits wide and Offset is added to it. Length prefixes, choice
// selectors and plain integers all use the same form.
type Bounds struct {
	Offset int64 `cbor:"1,keyasint"`
	Bits   int   `cbor:"2,keyasint"`
}

const (
	// recursionLimit bounds the nesting depth of schema-free walks (SkipBytes, DiagBytes).
	recursionLimit = 512

	// maxReadBits is the widest integer a single ReadBits call returns.
	maxReadBits = 64
)

// MaxInitialCapacityBytes is the allocation budget for the initial backing
// array of a decoded sequence. A length prefix larger than the budget allows
// still decodes every element; only the up-front allocation is clamped.
var MaxInitialCapacityBytes = 64 << 10

// initialCap returns the capacity to pre-allocate for n elements of elemSize bytes.
func initialCap(n uint64, elemSize int) int {
	if elemSize <= 0 {
		elemSize = 1
	}
	limit := uint64(MaxInitialCapacityBytes / elemSize)
	if n < limit {
		return int(n)
	}
	return int(limit)
}
