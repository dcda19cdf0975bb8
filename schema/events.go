package schema

import (
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

// EventType maps an event id to the type that carries its body.
type EventType struct {
	Type int    `cbor:"1,keyasint"`
	Name string `cbor:"2,keyasint"`
}

// EventStream describes how a stream of events is framed. Each event is a
// game loop delta (LoopType, normally SVarUint32), an optional user id
// (UserIDType, NoType when the stream has none), an event id (IDType) and
// the body type named by Types. The stream re-aligns to a byte boundary
// after every event.
type EventStream struct {
	LoopType   int                 `cbor:"1,keyasint"`
	UserIDType int                 `cbor:"2,keyasint"`
	IDType     int                 `cbor:"3,keyasint"`
	Types      map[int64]EventType `cbor:"4,keyasint"`
}

// ErrEmptyEvent is returned when an event decodes without consuming any
// input, which would otherwise repeat forever.
var ErrEmptyEvent = errors.New("schema: event consumed no input")

// Event is one decoded event.
type Event struct {
	Name      string
	ID        int64
	GameLoop  int64
	UserID    int64
	HasUserID bool
	// Bits is the encoded size of the event, alignment padding included.
	Bits   int
	Fields Value
}

// PackedEvents iterates a bit-packed event stream such as game or message
// events. Iteration stops after the first error.
func (d *Decoder) PackedEvents(s EventStream, data []byte) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		c := s2proto.NewBitCursor(data)
		var loop int64
		for n := 0; !c.Done(); n++ {
			start := c.Offset()
			ev, next, err := d.packedEvent(s, c, loop)
			if err != nil {
				yield(Event{}, s2proto.WrapError(err, fmt.Sprintf("event %d @%d", n, start)))
				return
			}
			next = next.ByteAlign()
			if next.Offset() <= start {
				yield(Event{}, s2proto.WrapError(ErrEmptyEvent, fmt.Sprintf("event %d @%d", n, start)))
				return
			}
			ev.Bits = next.Offset() - start
			loop = ev.GameLoop
			c = next
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func (d *Decoder) packedEvent(s EventStream, c s2proto.BitCursor, loop int64) (Event, s2proto.BitCursor, error) {
	var ev Event
	v, c, err := d.DecodePacked(s.LoopType, c)
	if err != nil {
		return ev, c, err
	}
	delta, err := loopDelta(v)
	if err != nil {
		return ev, c, err
	}
	ev.GameLoop = loop + delta

	if s.UserIDType != NoType {
		if v, c, err = d.DecodePacked(s.UserIDType, c); err != nil {
			return ev, c, err
		}
		if ev.UserID, err = userID(v); err != nil {
			return ev, c, err
		}
		ev.HasUserID = true
	}

	if v, c, err = d.DecodePacked(s.IDType, c); err != nil {
		return ev, c, err
	}
	et, err := s.lookup(&ev, v)
	if err != nil {
		return ev, c, err
	}
	if ev.Fields, c, err = d.DecodePacked(et.Type, c); err != nil {
		return ev, c, s2proto.WrapError(err, et.Name)
	}
	d.traceEvent(&ev)
	return ev, c, nil
}

// VersionedEvents iterates a byte-aligned event stream such as tracker
// events. Iteration stops after the first error.
func (d *Decoder) VersionedEvents(s EventStream, data []byte) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		b := data
		var loop int64
		for n := 0; len(b) > 0; n++ {
			start := len(data) - len(b)
			ev, rest, err := d.versionedEvent(s, b, loop)
			if err != nil {
				yield(Event{}, s2proto.WrapError(err, fmt.Sprintf("event %d @%d", n, start*8)))
				return
			}
			if len(rest) >= len(b) {
				yield(Event{}, s2proto.WrapError(ErrEmptyEvent, fmt.Sprintf("event %d @%d", n, start*8)))
				return
			}
			ev.Bits = (len(b) - len(rest)) * 8
			loop = ev.GameLoop
			b = rest
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func (d *Decoder) versionedEvent(s EventStream, b []byte, loop int64) (Event, []byte, error) {
	var ev Event
	v, b, err := d.DecodeVersioned(s.LoopType, b)
	if err != nil {
		return ev, b, err
	}
	delta, err := loopDelta(v)
	if err != nil {
		return ev, b, err
	}
	ev.GameLoop = loop + delta

	if s.UserIDType != NoType {
		if v, b, err = d.DecodeVersioned(s.UserIDType, b); err != nil {
			return ev, b, err
		}
		if ev.UserID, err = userID(v); err != nil {
			return ev, b, err
		}
		ev.HasUserID = true
	}

	if v, b, err = d.DecodeVersioned(s.IDType, b); err != nil {
		return ev, b, err
	}
	et, err := s.lookup(&ev, v)
	if err != nil {
		return ev, b, err
	}
	if ev.Fields, b, err = d.DecodeVersioned(et.Type, b); err != nil {
		return ev, b, s2proto.WrapError(err, et.Name)
	}
	d.traceEvent(&ev)
	return ev, b, nil
}

func (s *EventStream) lookup(ev *Event, id Value) (EventType, error) {
	n, ok := id.(int64)
	if !ok {
		return EventType{}, fmt.Errorf("schema: event id is %T, not an int", id)
	}
	et, ok := s.Types[n]
	if !ok {
		return EventType{}, s2proto.UnknownTagError{Tag: n}
	}
	ev.ID = n
	ev.Name = et.Name
	return et, nil
}

func (d *Decoder) traceEvent(ev *Event) {
	if ce := d.log.Check(zap.DebugLevel, "event"); ce != nil {
		ce.Write(zap.String("name", ev.Name), zap.Int64("id", ev.ID), zap.Int64("gameloop", ev.GameLoop))
	}
}

// loopDelta extracts the integer from a decoded SVarUint32.
func loopDelta(v Value) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case Variant:
		if i, ok := x.Value.(int64); ok {
			return i, nil
		}
	}
	return 0, fmt.Errorf("schema: game loop delta is %T, not an int", v)
}

// userID extracts the player slot from a decoded replay user id, which is
// either a bare int or a single-field record.
func userID(v Value) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case *Record:
		if x.Len() == 1 {
			for _, f := range x.AllFromFront() {
				if i, ok := f.(int64); ok {
					return i, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("schema: user id is %T, not an int", v)
}
