package s2proto

// SkipBytes skips over the next byte-aligned value and returns the remaining
// bytes. It needs no schema since byte-aligned values carry their own shape.
func SkipBytes(b []byte) ([]byte, error) {
	return skipOne(b, 0)
}

// ValidateStreamBytes checks that b is a sequence of complete byte-aligned
// values with nothing left over.
func ValidateStreamBytes(b []byte) error {
	var err error
	for len(b) > 0 {
		b, err = skipOne(b, 0)
		if err != nil {
			return err
		}
	}
	return nil
}

func skipOne(b []byte, depth int) ([]byte, error) {
	if depth > recursionLimit {
		return b, ErrRecursion
	}
	tag, err := NextTag(b)
	if err != nil {
		return b, err
	}
	switch tag {
	case TagInt:
		_, o, err := ReadTaggedVLQBytes(b)
		return orig(b, o, err)
	case TagBlob:
		o, err := ValidateBlobTag(b)
		if err != nil {
			return b, err
		}
		n, o, err := readLength(o)
		if err != nil {
			return b, err
		}
		if uint64(len(o)) < uint64(n) {
			return b, errShort(int(n), len(o))
		}
		return o[n:], nil
	case TagBitArray:
		_, _, o, err := ReadBitArrayBytes(b)
		return orig(b, o, err)
	case TagBool:
		_, o, err := ReadBoolBytes(b)
		return orig(b, o, err)
	case TagFourCC:
		_, o, err := ReadFourCCBytes(b)
		return orig(b, o, err)
	case TagReal64:
		_, o, err := ReadReal64Bytes(b)
		return orig(b, o, err)
	case TagOptional:
		present, o, err := ReadOptionalBytes(b)
		if err != nil || !present {
			return orig(b, o, err)
		}
		o, err = skipOne(o, depth+1)
		return orig(b, o, err)
	case TagArray:
		n, o, err := ReadArrayHeaderBytes(b)
		if err != nil {
			return b, err
		}
		for i := uint32(0); i < n; i++ {
			if o, err = skipOne(o, depth+1); err != nil {
				return b, err
			}
		}
		return o, nil
	case TagChoice:
		o, err := ValidateChoiceTag(b)
		if err != nil {
			return b, err
		}
		if _, o, err = ReadVLQBytes(o); err != nil {
			return b, err
		}
		o, err = skipOne(o, depth+1)
		return orig(b, o, err)
	case TagStruct:
		n, o, err := ReadStructHeaderBytes(b)
		if err != nil {
			return b, err
		}
		for i := uint32(0); i < n; i++ {
			if _, o, err = ReadVLQBytes(o); err != nil {
				return b, err
			}
			if o, err = skipOne(o, depth+1); err != nil {
				return b, err
			}
		}
		return o, nil
	}
	return b, InvalidTagError{Got: byte(tag)}
}

// orig returns the original input on error so failed skips never look
// partially consumed.
func orig(b, o []byte, err error) ([]byte, error) {
	if err != nil {
		return b, err
	}
	return o, nil
}
