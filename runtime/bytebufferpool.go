package s2proto

import (
	"encoding/hex"
	"strconv"
	"sync"
)

// ByteBuffer accumulates diagnostic text. Buffers are pooled: take one
// with GetByteBuffer and hand it back with PutByteBuffer once its contents
// have been copied out.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 256)} }}

// GetByteBuffer obtains a pooled ByteBuffer with zero length.
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// PutByteBuffer resets bb and returns it to the pool. Slices from Bytes
// must not be used afterwards.
func PutByteBuffer(bb *ByteBuffer) {
	bb.Reset()
	bbPool.Put(bb)
}

// Bytes returns the buffered bytes. The slice aliases the buffer.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// String returns a copy of the buffered bytes as a string.
func (bb *ByteBuffer) String() string { return string(bb.b) }

// Len returns the number of buffered bytes.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Reset empties the buffer, keeping its capacity.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Extend grows the buffer by n bytes and returns the new region.
func (bb *ByteBuffer) Extend(n int) []byte {
	old := len(bb.b)
	bb.b = append(bb.b, make([]byte, n)...)
	return bb.b[old:]
}

// WriteString appends s. It implements io.StringWriter and never fails.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// WriteByte appends c. It implements io.ByteWriter and never fails.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.b = append(bb.b, c)
	return nil
}

// WriteInt appends the decimal form of v.
func (bb *ByteBuffer) WriteInt(v int64) { bb.b = strconv.AppendInt(bb.b, v, 10) }

// WriteHex appends v as a hex literal, h'0a1b'.
func (bb *ByteBuffer) WriteHex(v []byte) {
	bb.b = append(bb.b, "h'"...)
	hex.Encode(bb.Extend(hex.EncodedLen(len(v))), v)
	bb.b = append(bb.b, '\'')
}
