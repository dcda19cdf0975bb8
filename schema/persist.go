package schema

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxNestedLevels:  16,
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 20,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncMode returns the deterministic CBOR mode used for tables and values.
func EncMode() cbor.EncMode { return encMode }

// DecMode returns the strict CBOR mode used to read tables back.
func DecMode() cbor.DecMode { return decMode }

// EncodeTable writes t as deterministic CBOR.
func EncodeTable(w io.Writer, t *Table) error {
	return encMode.NewEncoder(w).Encode(t)
}

// DecodeTable reads a table written by EncodeTable and validates it.
func DecodeTable(r io.Reader) (*Table, error) {
	t := new(Table)
	if err := decMode.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("schema: decode table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
