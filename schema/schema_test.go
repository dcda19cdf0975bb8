package schema_test

import (
	"github.com/synadia-labs/s2proto-go/schema"
	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

func field(name string, typ int, tag int64) schema.FieldInfo {
	return schema.FieldInfo{Name: name, Type: typ, Tag: tag}
}

// fixture is a small build-like table used across the tests.
type fixture struct {
	table *schema.Table

	svarUint32 int
	int8       int
	userID     int
	eventID    int
	chat       int
	camera     int
	stats      int
	unitBorn   int
	header     int
	derived    int
	loneParent int
	nested     int
	scalars    int
}

func newFixture() *fixture {
	t := &schema.Table{}
	fx := &fixture{table: t}

	u6 := t.Add(schema.Int(0, 6))
	u14 := t.Add(schema.Int(0, 14))
	u22 := t.Add(schema.Int(0, 22))
	u32 := t.Add(schema.Int(0, 32))
	fx.svarUint32 = t.Add(schema.Choice(0, 2,
		field("m_uint6", u6, 0),
		field("m_uint14", u14, 1),
		field("m_uint22", u22, 2),
		field("m_uint32", u32, 3),
	))
	fx.int8 = t.Add(schema.Int(-128, 8))
	u4 := t.Add(schema.Int(0, 4))
	fx.userID = t.Add(schema.Struct(field("m_userId", u4, 0)))
	fx.eventID = t.Add(schema.Int(0, 7))

	u2 := t.Add(schema.Int(0, 2))
	text := t.Add(schema.Blob(0, 11))
	fx.chat = t.Add(schema.Struct(
		field("m_recipient", u2, 0),
		field("m_string", text, 1),
	))

	i16 := t.Add(schema.Int(-32768, 16))
	point := t.Add(schema.Struct(field("x", i16, 0), field("y", i16, 1)))
	optPoint := t.Add(schema.Optional(point))
	fx.camera = t.Add(schema.Struct(
		field("m_target", optPoint, 0),
		field("m_distance", t.Add(schema.Optional(i16)), 1),
	))

	fx.stats = t.Add(schema.Struct(
		field("m_playerId", u4, 0),
		field("m_scoreValueMineralsCurrent", u32, 1),
	))
	name := t.Add(schema.Blob(0, 8))
	fx.unitBorn = t.Add(schema.Struct(
		field("m_unitTagIndex", u32, 0),
		field("m_unitTypeName", name, 1),
	))

	sig := t.Add(schema.Blob(0, 8))
	flag := t.Add(schema.Bool())
	fx.header = t.Add(schema.Struct(
		field("m_signature", sig, 0),
		field("m_elapsedGameLoops", u32, 3),
		schema.FieldInfo{Name: "m_useScaledTime", Type: flag, Tag: 4, Optional: true},
		field("m_ngdpRootKey", t.Add(schema.Optional(sig)), 5),
	))

	base := t.Add(schema.Struct(field("m_a", u6, 0), field("m_b", u6, 1)))
	fx.derived = t.Add(schema.Struct(field(schema.ParentField, base, 0), field("m_c", u6, 1)))
	fx.loneParent = t.Add(schema.Struct(field(schema.ParentField, u32, 0)))

	fx.nested = t.Add(schema.Array(0, 3, fx.svarUint32))
	fx.scalars = t.Add(schema.Struct(
		field("m_bits", t.Add(schema.BitArray(0, 5)), 0),
		field("m_fourcc", t.Add(schema.FourCC()), 1),
		field("m_r32", t.Add(schema.Real32()), 2),
		field("m_r64", t.Add(schema.Real64()), 3),
		field("m_null", t.Add(schema.Null()), 4),
	))
	return fx
}

func (fx *fixture) gameStream() schema.EventStream {
	return schema.EventStream{
		LoopType:   fx.svarUint32,
		UserIDType: fx.userID,
		IDType:     fx.eventID,
		Types: map[int64]schema.EventType{
			25: {Type: fx.chat, Name: "NNet.Game.SChatMessage"},
			49: {Type: fx.camera, Name: "NNet.Game.SCameraUpdateEvent"},
		},
	}
}

func (fx *fixture) trackerStream() schema.EventStream {
	return schema.EventStream{
		LoopType:   fx.svarUint32,
		UserIDType: schema.NoType,
		IDType:     fx.eventID,
		Types: map[int64]schema.EventType{
			0: {Type: fx.stats, Name: "NNet.Replay.Tracker.SPlayerStatsEvent"},
			1: {Type: fx.unitBorn, Name: "NNet.Replay.Tracker.SUnitBornEvent"},
		},
	}
}

// writeSVarUint32 writes a packed game loop delta in the narrowest variant.
func writeSVarUint32(w *s2proto.BitWriter, v uint32) {
	widths := []int{6, 14, 22, 32}
	for sel, bits := range widths {
		if bits == 32 || uint64(v) < 1<<bits {
			w.WriteBits(uint64(sel), 2)
			w.WriteBits(uint64(v), bits)
			return
		}
	}
}

type rawField struct {
	tag   int64
	value []byte
}

func structOf(fields ...rawField) []byte {
	b := s2proto.AppendStructHeader(nil, len(fields))
	for _, f := range fields {
		b = s2proto.AppendFieldTag(b, f.tag)
		b = append(b, f.value...)
	}
	return b
}

func tagged(v int64) []byte { return s2proto.AppendTaggedInt(nil, v) }

func svarVersioned(v int64) []byte {
	sel := int64(0)
	switch {
	case v >= 1<<22:
		sel = 3
	case v >= 1<<14:
		sel = 2
	case v >= 1<<6:
		sel = 1
	}
	return s2proto.AppendTaggedInt(s2proto.AppendChoiceHeader(nil, sel), v)
}
