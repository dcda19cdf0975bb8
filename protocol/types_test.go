package protocol_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/synadia-labs/s2proto-go/protocol"
	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

func TestInt8Packed(t *testing.T) {
	for raw, want := range map[byte]protocol.Int8{0: -128, 255: 127, 128: 0, 127: -1} {
		var v protocol.Int8
		c, err := v.DecodePacked(s2proto.NewBitCursor([]byte{raw}))
		if err != nil {
			t.Fatalf("raw %d: %v", raw, err)
		}
		if v != want || c.Offset() != 8 {
			t.Fatalf("raw %d: got %d", raw, v)
		}
	}

	var v protocol.Int8
	if _, err := v.DecodeVersioned(s2proto.AppendTaggedInt(nil, -7)); err != nil || v != -7 {
		t.Fatalf("versioned: %d %v", v, err)
	}
	var ov s2proto.IntOverflow
	if _, err := v.DecodeVersioned(s2proto.AppendTaggedInt(nil, 128)); !errors.As(err, &ov) {
		t.Fatalf("expected IntOverflow, got %v", err)
	}
}

func TestSVarUint32Versioned(t *testing.T) {
	var v protocol.SVarUint32
	rest, err := v.DecodeVersioned([]byte{0x03, 0x02, 0x09, 0x90, 0x03})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Variant != protocol.MUint14 || v.Value != 200 || len(rest) != 0 {
		t.Fatalf("got %v", v)
	}
	if v.String() != "m_uint14(200)" {
		t.Fatalf("String() = %q", v.String())
	}

	_, err = v.DecodeVersioned([]byte{0x03, 0x08, 0x09, 0x90, 0x03})
	var ut s2proto.UnknownTagError
	if !errors.As(err, &ut) || ut.Tag != 4 {
		t.Fatalf("expected UnknownTagError(4), got %v", err)
	}
}

func TestSVarUint32Packed(t *testing.T) {
	widths := []int{6, 14, 22, 32}
	values := []uint32{63, 5000, 1<<22 - 1, 1<<32 - 1}
	w := s2proto.NewBitWriter()
	for i := range widths {
		w.WriteBits(uint64(i), 2)
		w.WriteBits(uint64(values[i]), widths[i])
	}
	c := s2proto.NewBitCursor(w.Bytes())
	for i := range widths {
		var v protocol.SVarUint32
		next, err := v.DecodePacked(c)
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if v.Variant != protocol.SVarUint32Variant(i) || v.Value != values[i] {
			t.Fatalf("variant %d: got %v", i, v)
		}
		if next.Offset()-c.Offset() != 2+widths[i] {
			t.Fatalf("variant %d: consumed %d bits", i, next.Offset()-c.Offset())
		}
		c = next
	}
}

func smd5Field(tag int64, data []byte) []byte {
	b := s2proto.AppendFieldTag(nil, tag)
	return s2proto.AppendBlob(b, data)
}

func TestSmd5(t *testing.T) {
	digest := bytes.Repeat([]byte{0xab}, 16)

	in := s2proto.AppendStructHeader(nil, 1)
	in = append(in, smd5Field(1, digest)...)
	var v protocol.Smd5
	if _, err := v.DecodeVersioned(in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.DataDeprecated != nil || !bytes.Equal(v.Data, digest) {
		t.Fatalf("got %+v", v)
	}

	dup := s2proto.AppendStructHeader(nil, 2)
	dup = append(dup, smd5Field(1, digest)...)
	dup = append(dup, smd5Field(1, digest)...)
	_, err := v.DecodeVersioned(dup)
	var dt s2proto.DuplicateTagError
	if !errors.As(err, &dt) || dt.Field != "m_data" || dt.Tag != 1 {
		t.Fatalf("expected DuplicateTag(m_data, 1), got %v", err)
	}

	legacy := s2proto.AppendStructHeader(nil, 2)
	legacy = s2proto.AppendFieldTag(legacy, 0)
	legacy = s2proto.AppendOptionalHeader(legacy, true)
	legacy = s2proto.AppendArrayHeader(legacy, 2)
	legacy = s2proto.AppendTaggedInt(legacy, 1)
	legacy = s2proto.AppendTaggedInt(legacy, 255)
	legacy = append(legacy, smd5Field(1, nil)...)
	if _, err := v.DecodeVersioned(legacy); err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if v.DataDeprecated == nil || !bytes.Equal(*v.DataDeprecated, []uint8{1, 255}) {
		t.Fatalf("legacy: %+v", v)
	}
}

func TestSmd5Packed(t *testing.T) {
	digest := bytes.Repeat([]byte{0x5a}, 16)
	w := s2proto.NewBitWriter()
	w.WriteBool(false)
	w.WriteAlignedBytes(digest)
	var v protocol.Smd5
	c, err := v.DecodePacked(s2proto.NewBitCursor(w.Bytes()))
	if err != nil || v.DataDeprecated != nil || !bytes.Equal(v.Data, digest) || !c.Done() {
		t.Fatalf("got %+v %v", v, err)
	}
}

func TestCUserName(t *testing.T) {
	var v protocol.CUserName
	c, err := v.DecodePacked(s2proto.NewBitCursor([]byte{0x05, 'a', 'b', 'c', 'd', 'e'}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.String() != "abcde" || !c.Done() {
		t.Fatalf("got %q", v.Value)
	}

	_, err = v.DecodePacked(s2proto.NewBitCursor([]byte{0x05, 'a', 'b', 'c'}))
	if !errors.Is(err, s2proto.ErrUnexpectedEnd) {
		t.Fatalf("expected ErrUnexpectedEnd, got %v", err)
	}

	// Names are raw bytes; invalid UTF-8 is passed through.
	if _, err := v.DecodeVersioned(s2proto.AppendBlob(nil, []byte{0xff, 0xfe})); err != nil || len(v.Value) != 2 {
		t.Fatalf("versioned: %x %v", v.Value, err)
	}
}

func TestCFilePath(t *testing.T) {
	path := bytes.Repeat([]byte("x"), 600)
	w := s2proto.NewBitWriter()
	w.WriteBits(1, 3)
	w.WriteBlob(path, 10)
	c := s2proto.NewBitCursor(w.Bytes())
	_, c, _ = c.ReadBits(3)
	var v protocol.CFilePath
	c, err := v.DecodePacked(c)
	if err != nil || len(v.Value) != 600 || !c.Done() {
		t.Fatalf("got %d bytes, %v", len(v.Value), err)
	}
}

func TestCCacheHandle(t *testing.T) {
	handle := append([]byte("s2maEU\x00\x00"), bytes.Repeat([]byte{0x11}, 32)...)
	w := s2proto.NewBitWriter()
	w.WriteBits(1, 5)
	w.WriteAlignedBytes(handle)
	c := s2proto.NewBitCursor(w.Bytes())
	_, c, _ = c.ReadBits(5)

	var v protocol.CCacheHandle
	c, err := v.DecodePacked(c)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(v.Value, handle) || !c.Done() {
		t.Fatalf("got %x", v.Value)
	}
	if v.Extension() != "s2ma" || v.Region() != "EU" {
		t.Fatalf("extension %q region %q", v.Extension(), v.Region())
	}

	short := s2proto.NewBitCursor(handle[:39])
	if _, err := v.DecodePacked(short); !errors.Is(err, s2proto.ErrUnexpectedEnd) {
		t.Fatalf("expected ErrUnexpectedEnd, got %v", err)
	}
}
