package s2proto_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	s2proto "github.com/synadia-labs/s2proto-go/runtime"
)

func TestVLQVectors(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   int64
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x02}, 1},
		{[]byte{0x03}, -1},
		{[]byte{0x3e}, 31},
		{[]byte{0x7e}, 63},
		{[]byte{0x7f}, -63},
		{[]byte{0x80, 0x01}, 64},
		{[]byte{0x81, 0x01}, -64},
		{[]byte{0x90, 0x03}, 200},
		{[]byte{0xfe, 0x7f}, 8191},
		{[]byte{0x80, 0x80, 0x01}, 8192},
	}

	for _, tt := range tests {
		got := s2proto.AppendVLQ(nil, tt.value)
		if !bytes.Equal(got, tt.encoded) {
			t.Errorf("encode %d: got %x, want %x", tt.value, got, tt.encoded)
		}
		v, rest, err := s2proto.ReadVLQBytes(append(tt.encoded, 0xee))
		if err != nil {
			t.Fatalf("decode %x: %v", tt.encoded, err)
		}
		if v != tt.value {
			t.Errorf("decode %x: got %d, want %d", tt.encoded, v, tt.value)
		}
		if !bytes.Equal(rest, []byte{0xee}) {
			t.Errorf("decode %x: rest %x", tt.encoded, rest)
		}
	}
}

func TestVLQNegativeZero(t *testing.T) {
	v, _, err := s2proto.ReadVLQBytes([]byte{0x01})
	if err != nil || v != 0 {
		t.Fatalf("negative zero decoded to %d, %v", v, err)
	}
}

func TestVLQRoundTripBoundaries(t *testing.T) {
	values := []int64{
		0, 1, -1, 63, 64, -64, -65,
		math.MaxInt8, math.MinInt8, math.MaxUint8,
		math.MaxInt16, math.MinInt16, math.MaxUint16,
		math.MaxInt32, math.MinInt32, math.MaxUint32,
		math.MaxInt64, math.MinInt64, math.MaxInt64 - 1, math.MinInt64 + 1,
	}
	for _, want := range values {
		b := s2proto.AppendTaggedInt(nil, want)
		got, rest, err := s2proto.ReadTaggedVLQBytes(b)
		if err != nil {
			t.Fatalf("%d: %v", want, err)
		}
		if got != want || len(rest) != 0 {
			t.Fatalf("%d: got %d rest %d", want, got, len(rest))
		}
	}
}

func TestVLQOverflow(t *testing.T) {
	// MinInt64 flipped to positive has magnitude 1<<63, one past MaxInt64.
	b := s2proto.AppendVLQ(nil, math.MinInt64)
	b[0] &^= 1
	_, rest, err := s2proto.ReadVLQBytes(b)
	var ov s2proto.IntOverflow
	if !errors.As(err, &ov) {
		t.Fatalf("expected IntOverflow, got %v", err)
	}
	if len(rest) != len(b) {
		t.Fatalf("failed read consumed input")
	}

	if !s2proto.Resumable(err) {
		t.Fatalf("fully read overflow should be resumable")
	}

	long := append(bytes.Repeat([]byte{0xff}, 10), 0x7f)
	_, rest, err = s2proto.ReadVLQBytes(long)
	if !errors.Is(err, s2proto.ErrVLQOverflow) || errors.As(err, &ov) {
		t.Fatalf("expected ErrVLQOverflow for 11-byte VLQ, got %v", err)
	}
	if s2proto.Resumable(err) || len(rest) != len(long) {
		t.Fatalf("mid-value overflow reported resumable")
	}
	if _, _, err := s2proto.ReadTaggedVLQBytes(append([]byte{byte(s2proto.TagInt)}, long...)); !errors.Is(err, s2proto.ErrVLQOverflow) {
		t.Fatalf("tagged: expected ErrVLQOverflow, got %v", err)
	}
}

func TestVLQTruncated(t *testing.T) {
	for _, b := range [][]byte{nil, {0x80}, {0x80, 0x80}} {
		if _, _, err := s2proto.ReadVLQBytes(b); !errors.Is(err, s2proto.ErrUnexpectedEnd) {
			t.Fatalf("%x: expected ErrUnexpectedEnd, got %v", b, err)
		}
	}
}

func TestTaggedIntMalformedTag(t *testing.T) {
	_, _, err := s2proto.ReadTaggedVLQBytes([]byte{0x05, 0x00})
	var mt s2proto.MalformedTagError
	if !errors.As(err, &mt) {
		t.Fatalf("expected MalformedTagError, got %v", err)
	}
	if mt.Want != s2proto.TagInt || mt.Got != 0x05 {
		t.Fatalf("unexpected detail: %+v", mt)
	}
}

func TestTaggedNarrowing(t *testing.T) {
	var ov s2proto.IntOverflow

	if v, _, err := s2proto.ReadTaggedUint8Bytes(s2proto.AppendTaggedInt(nil, 255)); err != nil || v != 255 {
		t.Fatalf("uint8 255: %d %v", v, err)
	}
	_, _, err := s2proto.ReadTaggedUint8Bytes(s2proto.AppendTaggedInt(nil, 300))
	if !errors.As(err, &ov) || ov.Value != 300 || ov.FailedBitsize != 8 || ov.Signed {
		t.Fatalf("uint8 300: %+v %v", ov, err)
	}
	_, _, err = s2proto.ReadTaggedUint32Bytes(s2proto.AppendTaggedInt(nil, -1))
	if !errors.As(err, &ov) || ov.Value != -1 || ov.FailedBitsize != 32 {
		t.Fatalf("uint32 -1: %+v %v", ov, err)
	}
	_, _, err = s2proto.ReadTaggedInt8Bytes(s2proto.AppendTaggedInt(nil, -129))
	if !errors.As(err, &ov) || !ov.Signed || ov.FailedBitsize != 8 {
		t.Fatalf("int8 -129: %+v %v", ov, err)
	}
	if v, _, err := s2proto.ReadTaggedInt16Bytes(s2proto.AppendTaggedInt(nil, math.MinInt16)); err != nil || v != math.MinInt16 {
		t.Fatalf("int16 min: %d %v", v, err)
	}
	if v, _, err := s2proto.ReadTaggedUint64Bytes(s2proto.AppendTaggedInt(nil, math.MaxInt64)); err != nil || v != math.MaxInt64 {
		t.Fatalf("uint64 max: %d %v", v, err)
	}
	if !s2proto.Resumable(ov) {
		t.Fatalf("overflow should be resumable")
	}
}

func TestNarrow(t *testing.T) {
	if _, err := s2proto.Narrow[uint16](65536); err == nil {
		t.Fatalf("65536 fit uint16")
	}
	if v, err := s2proto.Narrow[int32](-5); err != nil || v != -5 {
		t.Fatalf("int32 -5: %d %v", v, err)
	}
	if _, err := s2proto.Narrow[uint64](-5); err == nil {
		t.Fatalf("-5 fit uint64")
	}
}
