package schema_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/synadia-labs/s2proto-go/schema"
	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

func sampleRecord() *schema.Record {
	r := schema.NewRecord(5)
	r.Set("m_x", int64(1))
	r.Set("m_name", []byte("ab"))
	r.Set("m_sel", schema.Variant{Name: "m_uint14", Tag: 1, Value: int64(200)})
	r.Set("m_bits", schema.BitVector{Len: 12, Data: []byte{0xab, 0x0d}})
	r.Set("m_list", []schema.Value{true, nil, 1.5})
	return r
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	if err := schema.Dump(&buf, sampleRecord()); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	const want = `{m_x: 1, m_name: "ab", m_sel: m_uint14(200), m_bits: bits(12, h'ab0d'), m_list: [true, null, 1.5]}`
	if buf.String() != want {
		t.Fatalf("Dump:\n got %s\nwant %s", buf.String(), want)
	}

	cases := []struct {
		v    schema.Value
		want string
	}{
		{[]byte{0x00, 0xff}, "h'00ff'"},
		{[]byte("line\nbreak"), "h'6c696e650a627265616b'"},
		{float32(0.1), "0.1"},
		{math.Inf(-1), "-Infinity"},
		{[]schema.Value{}, "[]"},
		{schema.NewRecord(0), "{}"},
	}
	for _, tc := range cases {
		if got := schema.Sprint(tc.v); got != tc.want {
			t.Errorf("Sprint(%#v) = %s, want %s", tc.v, got, tc.want)
		}
	}

	if err := schema.Dump(&buf, struct{}{}); err == nil {
		t.Fatalf("Dump accepted an unknown type")
	}
}

func TestMarshalValue(t *testing.T) {
	data, err := schema.MarshalValue(sampleRecord())
	if err != nil {
		t.Fatalf("MarshalValue: %v", err)
	}
	diag, err := schema.Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	const want = `{"m_x": 1, "m_sel": {"m_uint14": 200}, "m_bits": [12, h'ab0d'], "m_list": [true, null, 1.5], "m_name": h'6162'}`
	if diag != want {
		t.Fatalf("Diagnose:\n got %s\nwant %s", diag, want)
	}

	again, err := schema.MarshalValue(sampleRecord())
	if err != nil || !bytes.Equal(data, again) {
		t.Fatalf("MarshalValue is not deterministic")
	}

	if _, err := schema.MarshalValue(map[int]int{}); err == nil {
		t.Fatalf("MarshalValue accepted an unknown type")
	}
}

func TestDumpDepthLimit(t *testing.T) {
	var v schema.Value = int64(0)
	for i := 0; i < schema.DefaultMaxDepth+2; i++ {
		v = []schema.Value{v}
	}
	if err := schema.Dump(&bytes.Buffer{}, v); !errors.Is(err, s2proto.ErrRecursion) {
		t.Fatalf("expected ErrRecursion, got %v", err)
	}
}
