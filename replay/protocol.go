package replay

import (
	"fmt"
	"io"

	"github.com/synadia-labs/s2proto-go/schema"
)

// Protocol is everything needed to decode the replays of one base build:
// the build's type table and the root types of each replay file.
type Protocol struct {
	BaseBuild     uint32              `cbor:"1,keyasint"`
	Table         *schema.Table       `cbor:"2,keyasint"`
	DetailsType   int                 `cbor:"3,keyasint"`
	InitDataType  int                 `cbor:"4,keyasint"`
	GameEvents    schema.EventStream  `cbor:"5,keyasint"`
	MessageEvents schema.EventStream  `cbor:"6,keyasint"`
	TrackerEvents *schema.EventStream `cbor:"7,keyasint,omitempty"`
}

// Validate checks the table and that every root type id resolves.
func (p *Protocol) Validate() error {
	if p.Table == nil {
		return fmt.Errorf("replay: protocol %d has no type table", p.BaseBuild)
	}
	if err := p.Table.Validate(); err != nil {
		return fmt.Errorf("replay: protocol %d: %w", p.BaseBuild, err)
	}
	check := func(what string, id int) error {
		if _, err := p.Table.Type(id); err != nil {
			return fmt.Errorf("replay: protocol %d: %s: %w", p.BaseBuild, what, err)
		}
		return nil
	}
	if err := check("details", p.DetailsType); err != nil {
		return err
	}
	if err := check("init data", p.InitDataType); err != nil {
		return err
	}
	streams := []struct {
		name string
		s    *schema.EventStream
	}{
		{"game events", &p.GameEvents},
		{"message events", &p.MessageEvents},
		{"tracker events", p.TrackerEvents},
	}
	for _, st := range streams {
		name, s := st.name, st.s
		if s == nil {
			continue
		}
		if err := check(name+" loop", s.LoopType); err != nil {
			return err
		}
		if s.UserIDType != schema.NoType {
			if err := check(name+" user id", s.UserIDType); err != nil {
				return err
			}
		}
		if err := check(name+" id", s.IDType); err != nil {
			return err
		}
		for id, et := range s.Types {
			if err := check(fmt.Sprintf("%s %d (%s)", name, id, et.Name), et.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// Save writes p as deterministic CBOR.
func (p *Protocol) Save(w io.Writer) error {
	return schema.EncMode().NewEncoder(w).Encode(p)
}

// LoadProtocol reads a protocol written by Save and validates it.
func LoadProtocol(r io.Reader) (*Protocol, error) {
	p := new(Protocol)
	if err := schema.DecMode().NewDecoder(r).Decode(p); err != nil {
		return nil, fmt.Errorf("replay: decode protocol: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
