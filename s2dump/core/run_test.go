package core_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synadia-labs/s2proto-go/protocol"
	"github.com/synadia-labs/s2proto-go/replay"
	s2proto "github.com/synadia-labs/s2proto-go/runtime"
	"github.com/synadia-labs/s2proto-go/s2dump/core"
	"github.com/synadia-labs/s2proto-go/schema"
)

type memArchive map[string][]byte

func (m memArchive) UserData() []byte { return m[""] }

func (m memArchive) FileByName(name string) ([]byte, error) { return m[name], nil }

func structOf(fields ...[]byte) []byte {
	b := s2proto.AppendStructHeader(nil, len(fields))
	for i, f := range fields {
		b = s2proto.AppendFieldTag(b, int64(i))
		b = append(b, f...)
	}
	return b
}

func tagged(v int64) []byte { return s2proto.AppendTaggedInt(nil, v) }

func attributes() []byte {
	w := s2proto.NewLittleEndianBitWriter()
	w.WriteBits(0, 8)
	w.WriteBits(999, 32)
	w.WriteBits(1, 32)
	w.WriteBits(999, 32)
	w.WriteBits(3001, 32)
	w.WriteBits(1, 8)
	w.WriteAlignedBytes([]byte("nruT"))
	return w.Bytes()
}

func testReplay(t *testing.T) *replay.Replay {
	t.Helper()
	header := structOf(
		s2proto.AppendBlob(nil, []byte(protocol.Signature)),
		structOf(tagged(1), tagged(5), tagged(0), tagged(12), tagged(94137), tagged(94137)),
		tagged(2),
		tagged(22400),
	)
	a := memArchive{"": header, replay.FileAttributes: attributes()}
	r, err := replay.New(a, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestWriteHeader(t *testing.T) {
	r := testReplay(t)
	var buf bytes.Buffer
	if err := core.Write(&buf, r, core.Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"m_elapsedGameLoops: 22400", "m_baseBuild: 94137", "m_ngdpRootKey: null"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}

	buf.Reset()
	if err := core.Write(&buf, r, core.Options{Header: true, Format: core.FormatDiag}); err != nil {
		t.Fatalf("Write diag: %v", err)
	}
	if !strings.Contains(buf.String(), `"m_elapsedGameLoops": 22400`) {
		t.Fatalf("diag output %s", buf.String())
	}

	buf.Reset()
	if err := core.Write(&buf, r, core.Options{Header: true, Format: core.FormatCBOR}); err != nil {
		t.Fatalf("Write cbor: %v", err)
	}
	if diag, err := schema.Diagnose(buf.Bytes()); err != nil || !strings.Contains(diag, `"m_type": 2`) {
		t.Fatalf("cbor output %s %v", diag, err)
	}
}

func TestWriteRawAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	if err := core.Write(&buf, testReplay(t), core.Options{Raw: true, Attributes: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "{0: h'") || !strings.Contains(lines[0], "3: 22400") {
		t.Fatalf("raw header %s", lines[0])
	}
	const want = `{source: 0, mapNamespace: 999, count: 1, scopes: {1: {3001: ["Turn"]}}}`
	if lines[1] != want {
		t.Fatalf("attributes\n got %s\nwant %s", lines[1], want)
	}
}

func TestWriteNeedsProtocol(t *testing.T) {
	var ub replay.UnknownBuildError
	err := core.Write(&bytes.Buffer{}, testReplay(t), core.Options{Details: true})
	if !errors.As(err, &ub) || ub.Build != 94137 {
		t.Fatalf("expected UnknownBuildError, got %v", err)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := core.Write(&bytes.Buffer{}, testReplay(t), core.Options{Format: "yaml"}); err == nil {
		t.Fatalf("unknown format accepted")
	}
}

func TestRunMissingFile(t *testing.T) {
	if err := core.Run(&bytes.Buffer{}, filepath.Join(t.TempDir(), "none.SC2Replay"), core.Options{}); err == nil {
		t.Fatalf("Run on a missing file succeeded")
	}
}
