package s2proto

import "math/bits"

// ChoiceVariant is one arm of a byte-aligned tagged union. A nil Decode
// marks a unit variant with no payload.
type ChoiceVariant struct {
	Name   string
	Tag    int64
	Decode func(b []byte) ([]byte, error)
}

// ReadChoiceBytes reads a choice tag and a VLQ variant selector, then runs
// the matching variant's decoder. It returns the selector.
func ReadChoiceBytes(b []byte, variants []ChoiceVariant) (int64, []byte, error) {
	o, err := ValidateChoiceTag(b)
	if err != nil {
		return 0, b, err
	}
	tag, o, err := ReadVLQBytes(o)
	if err != nil {
		return 0, b, err
	}
	for i := range variants {
		v := &variants[i]
		if v.Tag != tag {
			continue
		}
		if v.Decode == nil {
			return tag, o, nil
		}
		o, err = v.Decode(o)
		if err != nil {
			return 0, b, WrapError(err, v.Name)
		}
		return tag, o, nil
	}
	return 0, b, UnknownTagError{Tag: tag}
}

// PackedVariant is one arm of a bit-packed tagged union.
type PackedVariant struct {
	Name   string
	Tag    int64
	Decode func(c BitCursor) (BitCursor, error)
}

// ReadPackedChoice reads a selector of the schema-supplied width and runs
// the matching variant's decoder. It returns the selector.
func ReadPackedChoice(c BitCursor, selector Bounds, variants []PackedVariant) (int64, BitCursor, error) {
	tag, o, err := ReadPackedBounded(c, selector)
	if err != nil {
		return 0, c, err
	}
	for i := range variants {
		v := &variants[i]
		if v.Tag != tag {
			continue
		}
		if v.Decode == nil {
			return tag, o, nil
		}
		o, err = v.Decode(o)
		if err != nil {
			return 0, c, WrapError(err, v.Name)
		}
		return tag, o, nil
	}
	return 0, c, UnknownTagError{Tag: tag}
}

// SelectorBits returns ceil(log2(n)), the narrowest selector able to address
// n variants. Generated tables carry their own widths; this is only for
// checking them.
func SelectorBits(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}
