package replay

import (
	"bytes"
	"fmt"
	"slices"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// Attribute is one lobby setting, such as a player's race or the game speed.
type Attribute struct {
	Namespace uint32
	ID        uint32
	Scope     uint8
	// Value is the four byte value with its byte order reversed and NUL
	// padding removed, e.g. "Prot" or "Fast".
	Value []byte
}

// Attributes holds the decoded attributes file.
type Attributes struct {
	Source       uint8
	MapNamespace uint32
	Count        uint32
	// Scopes groups attributes by scope (player slot, 16 for global), then id.
	Scopes map[uint8]map[uint32][]Attribute
}

// Lookup returns the first value of attribute id in scope.
func (a *Attributes) Lookup(scope uint8, id uint32) ([]byte, bool) {
	vs := a.Scopes[scope][id]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0].Value, true
}

// DecodeAttributes decodes a replay.attributes.events file. Unlike the other
// sections its integers are assembled least significant chunk first. An
// empty file yields empty attributes.
func DecodeAttributes(data []byte) (*Attributes, error) {
	out := &Attributes{Scopes: make(map[uint8]map[uint32][]Attribute)}
	c := s2proto.NewLittleEndianBitCursor(data)
	if c.Done() {
		return out, nil
	}
	var err error
	var v uint64
	if v, c, err = c.ReadBits(8); err != nil {
		return nil, fmt.Errorf("replay: attributes source: %w", err)
	}
	out.Source = uint8(v)
	if v, c, err = c.ReadBits(32); err != nil {
		return nil, fmt.Errorf("replay: attributes map namespace: %w", err)
	}
	out.MapNamespace = uint32(v)
	if v, c, err = c.ReadBits(32); err != nil {
		return nil, fmt.Errorf("replay: attributes count: %w", err)
	}
	out.Count = uint32(v)

	for i := 0; !c.Done(); i++ {
		var a Attribute
		if a, c, err = readAttribute(c); err != nil {
			return nil, fmt.Errorf("replay: attribute %d @%d: %w", i, c.Offset(), err)
		}
		ids := out.Scopes[a.Scope]
		if ids == nil {
			ids = make(map[uint32][]Attribute)
			out.Scopes[a.Scope] = ids
		}
		ids[a.ID] = append(ids[a.ID], a)
	}
	return out, nil
}

func readAttribute(c s2proto.BitCursor) (Attribute, s2proto.BitCursor, error) {
	var a Attribute
	ns, o, err := c.ReadBits(32)
	if err != nil {
		return a, c, err
	}
	id, o, err := o.ReadBits(32)
	if err != nil {
		return a, c, err
	}
	scope, o, err := o.ReadBits(8)
	if err != nil {
		return a, c, err
	}
	raw, o, err := o.ReadAlignedBytes(4)
	if err != nil {
		return a, c, err
	}
	slices.Reverse(raw)
	a.Namespace = uint32(ns)
	a.ID = uint32(id)
	a.Scope = uint8(scope)
	a.Value = bytes.Trim(raw, "\x00")
	return a, o, nil
}
