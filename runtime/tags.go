package s2proto

// expectTag consumes one byte and checks it against want.
func expectTag(b []byte, want TypeTag) ([]byte, error) {
	if len(b) < 1 {
		return b, errShort(1, 0)
	}
	if b[0] != byte(want) {
		return b, MalformedTagError{Want: want, Got: b[0]}
	}
	return b[1:], nil
}

// NextTag returns the type tag of the next byte-aligned value without consuming it.
func NextTag(b []byte) (TypeTag, error) {
	if len(b) < 1 {
		return 0, errShort(1, 0)
	}
	return TypeTag(b[0]), nil
}

// ValidateStructTag consumes a struct tag
func ValidateStructTag(b []byte) ([]byte, error) { return expectTag(b, TagStruct) }

// ValidateArrayTag consumes an array tag
func ValidateArrayTag(b []byte) ([]byte, error) { return expectTag(b, TagArray) }

// ValidateBitArrayTag consumes a bit array tag
func ValidateBitArrayTag(b []byte) ([]byte, error) { return expectTag(b, TagBitArray) }

// ValidateBlobTag consumes a blob tag
func ValidateBlobTag(b []byte) ([]byte, error) { return expectTag(b, TagBlob) }

// ValidateChoiceTag consumes a choice tag
func ValidateChoiceTag(b []byte) ([]byte, error) { return expectTag(b, TagChoice) }

// ValidateOptTag consumes an optional tag
func ValidateOptTag(b []byte) ([]byte, error) { return expectTag(b, TagOptional) }

// ValidateBoolTag consumes a bool tag
func ValidateBoolTag(b []byte) ([]byte, error) { return expectTag(b, TagBool) }

// ValidateFourCCTag consumes a fourcc/real32 tag
func ValidateFourCCTag(b []byte) ([]byte, error) { return expectTag(b, TagFourCC) }

// ValidateReal64Tag consumes a real64 tag
func ValidateReal64Tag(b []byte) ([]byte, error) { return expectTag(b, TagReal64) }

// ValidateIntTag consumes an int tag
func ValidateIntTag(b []byte) ([]byte, error) { return expectTag(b, TagInt) }
