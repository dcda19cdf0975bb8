// Package replay reads StarCraft II replays. A replay is an MPQ archive:
// the header lives in the archive's user data and the rest in named files,
// each decoded with the protocol of the replay's base build.
package replay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/icza/mpq"
	"go.uber.org/zap"

	"github.com/synadia-labs/s2proto-go/protocol"
	"github.com/synadia-labs/s2proto-go/schema"
	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// Names of the archive files holding each section.
const (
	FileDetails       = "replay.details"
	FileInitData      = "replay.initData"
	FileGameEvents    = "replay.game.events"
	FileMessageEvents = "replay.message.events"
	FileTrackerEvents = "replay.tracker.events"
	FileAttributes    = "replay.attributes.events"
)

// ErrFileNotFound is returned when a section's file is absent from the archive.
var ErrFileNotFound = errors.New("replay: file not found")

// Archive is the container a replay is read from. *mpq.MPQ satisfies it.
// FileByName returns a nil slice and nil error for a missing file.
type Archive interface {
	UserData() []byte
	FileByName(name string) ([]byte, error)
}

var _ Archive = (*mpq.MPQ)(nil)

// Replay is an opened replay.
type Replay struct {
	archive Archive
	header  *protocol.SHeader

	proto    *Protocol
	protoErr error
	decoder  *schema.Decoder
}

// Open opens the replay file at path. Sections are decoded with the
// protocol reg holds for the replay's base build; reg may be nil when only
// the header is needed. The replay must be closed.
func Open(path string, reg *Registry, opts ...schema.Option) (*Replay, error) {
	m, err := mpq.NewFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: open %s: %w", path, err)
	}
	r, err := New(m, reg, opts...)
	if err != nil {
		m.Close()
		return nil, err
	}
	return r, nil
}

// FromReader opens a replay held in rs.
func FromReader(rs io.ReadSeeker, reg *Registry, opts ...schema.Option) (*Replay, error) {
	m, err := mpq.New(rs)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return New(m, reg, opts...)
}

// New reads the header from a and resolves the protocol. A missing
// protocol is not an error here: the header stays readable and section
// accessors report UnknownBuildError.
func New(a Archive, reg *Registry, opts ...schema.Option) (*Replay, error) {
	h, err := protocol.DecodeHeader(headerContent(a.UserData()))
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if !h.ValidSignature() {
		Logger().Warn("unexpected replay signature", zap.ByteString("signature", h.Signature))
	}
	r := &Replay{archive: a, header: h}
	build := h.Version.BaseBuild
	switch {
	case reg == nil:
		r.protoErr = UnknownBuildError{Build: build}
	default:
		r.proto, r.protoErr = reg.Lookup(build)
	}
	if r.proto != nil {
		r.decoder = schema.NewDecoder(r.proto.Table, opts...)
	}
	Logger().Debug("opened replay",
		zap.Stringer("version", h.Version),
		zap.Uint32("baseBuild", build),
		zap.Bool("protocol", r.proto != nil))
	return r, nil
}

// Close closes the underlying archive if it can be closed.
func (r *Replay) Close() error {
	if c, ok := r.archive.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Header returns the replay header.
func (r *Replay) Header() *protocol.SHeader { return r.header }

// RawHeader returns the undecoded header bytes from the archive user data.
func (r *Replay) RawHeader() []byte { return headerContent(r.archive.UserData()) }

// headerContent strips the little-endian length word MPQ user data blocks
// carry ahead of the header. Data that already starts with the header's
// struct tag is returned as is.
func headerContent(ud []byte) []byte {
	if len(ud) < 4 || ud[0] == byte(s2proto.TagStruct) {
		return ud
	}
	n := binary.LittleEndian.Uint32(ud)
	if uint64(n) > uint64(len(ud)-4) {
		return ud
	}
	return ud[4 : 4+n]
}

// Protocol returns the protocol used for the sections, or UnknownBuildError.
func (r *Replay) Protocol() (*Protocol, error) { return r.proto, r.protoErr }

func (r *Replay) file(name string) ([]byte, error) {
	data, err := r.archive.FileByName(name)
	if err != nil {
		return nil, fmt.Errorf("replay: %s: %w", name, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}
	return data, nil
}

// Details decodes the game details: players, map, and time.
func (r *Replay) Details() (schema.Value, error) {
	if r.protoErr != nil {
		return nil, r.protoErr
	}
	data, err := r.file(FileDetails)
	if err != nil {
		return nil, err
	}
	v, _, err := r.decoder.DecodeVersioned(r.proto.DetailsType, data)
	if err != nil {
		return nil, fmt.Errorf("replay: details: %w", err)
	}
	return v, nil
}

// InitData decodes the lobby state the game started from.
func (r *Replay) InitData() (schema.Value, error) {
	if r.protoErr != nil {
		return nil, r.protoErr
	}
	data, err := r.file(FileInitData)
	if err != nil {
		return nil, err
	}
	v, _, err := r.decoder.DecodePacked(r.proto.InitDataType, s2proto.NewBitCursor(data))
	if err != nil {
		return nil, fmt.Errorf("replay: init data: %w", err)
	}
	return v, nil
}

// GameEvents iterates the player input events.
func (r *Replay) GameEvents() iter.Seq2[schema.Event, error] {
	return r.events(FileGameEvents, func(p *Protocol) *schema.EventStream { return &p.GameEvents }, true)
}

// MessageEvents iterates chat and ping events.
func (r *Replay) MessageEvents() iter.Seq2[schema.Event, error] {
	return r.events(FileMessageEvents, func(p *Protocol) *schema.EventStream { return &p.MessageEvents }, true)
}

// TrackerEvents iterates the game state events written since build 25604.
// Replays from builds without them yield nothing.
func (r *Replay) TrackerEvents() iter.Seq2[schema.Event, error] {
	return r.events(FileTrackerEvents, func(p *Protocol) *schema.EventStream { return p.TrackerEvents }, false)
}

func (r *Replay) events(name string, stream func(*Protocol) *schema.EventStream, packed bool) iter.Seq2[schema.Event, error] {
	return func(yield func(schema.Event, error) bool) {
		if r.protoErr != nil {
			yield(schema.Event{}, r.protoErr)
			return
		}
		s := stream(r.proto)
		if s == nil {
			return
		}
		data, err := r.file(name)
		if err != nil {
			yield(schema.Event{}, err)
			return
		}
		seq := r.decoder.VersionedEvents(*s, data)
		if packed {
			seq = r.decoder.PackedEvents(*s, data)
		}
		for ev, err := range seq {
			if err != nil {
				yield(schema.Event{}, fmt.Errorf("replay: %s: %w", name, err))
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Attributes decodes the lobby attributes. They are protocol independent.
func (r *Replay) Attributes() (*Attributes, error) {
	data, err := r.file(FileAttributes)
	if err != nil {
		return nil, err
	}
	return DecodeAttributes(data)
}
