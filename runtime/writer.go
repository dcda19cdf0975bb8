package s2proto

import (
	"encoding/binary"
	"math"
)

// BitWriter builds bit-packed data in the exact layout BitCursor reads:
// each byte fills from its least significant bit upward, and in big-endian
// mode the most significant chunk of a value is written first.
type BitWriter struct {
	buf    []byte
	off    int
	little bool
}

// NewBitWriter returns a big-endian writer.
func NewBitWriter() *BitWriter { return &BitWriter{} }

// NewLittleEndianBitWriter returns a writer matching NewLittleEndianBitCursor.
func NewLittleEndianBitWriter() *BitWriter { return &BitWriter{little: true} }

// Bytes returns the encoded bytes. A partially filled final byte is included.
func (w *BitWriter) Bytes() []byte { return w.buf }

// Offset returns the number of bits written.
func (w *BitWriter) Offset() int { return w.off }

// WriteBits writes the low n bits of v (0 <= n <= 64).
func (w *BitWriter) WriteBits(v uint64, n int) {
	written := 0
	for written < n {
		if w.off&7 == 0 {
			w.buf = append(w.buf, 0)
		}
		shift := w.off & 7
		take := n - written
		if take > 8-shift {
			take = 8 - shift
		}
		var chunk uint64
		if w.little {
			chunk = v >> written
		} else {
			chunk = v >> (n - written - take)
		}
		chunk &= 1<<take - 1
		w.buf[len(w.buf)-1] |= byte(chunk << shift)
		written += take
		w.off += take
	}
}

// ByteAlign pads with zero bits up to the next byte boundary.
func (w *BitWriter) ByteAlign() { w.off = (w.off + 7) &^ 7 }

// WriteAlignedBytes aligns and appends p verbatim.
func (w *BitWriter) WriteAlignedBytes(p []byte) {
	w.ByteAlign()
	w.buf = append(w.buf, p...)
	w.off += len(p) * 8
}

// WriteUnalignedBytes writes p as a run of 8-bit values at the current offset.
func (w *BitWriter) WriteUnalignedBytes(p []byte) {
	for _, c := range p {
		w.WriteBits(uint64(c), 8)
	}
}

// WritePackedInt writes v as a biased integer: v-offset in bits bits.
func (w *BitWriter) WritePackedInt(v, offset int64, bits int) {
	w.WriteBits(uint64(v-offset), bits)
}

// WriteBool writes one bit.
func (w *BitWriter) WriteBool(v bool) {
	if v {
		w.WriteBits(1, 1)
		return
	}
	w.WriteBits(0, 1)
}

// WriteBlob writes a length prefix of lengthBits bits, aligns and appends p.
func (w *BitWriter) WriteBlob(p []byte, lengthBits int) {
	w.WriteBits(uint64(len(p)), lengthBits)
	w.WriteAlignedBytes(p)
}

// WriteReal32 writes a big-endian float32 as four unaligned bytes.
func (w *BitWriter) WriteReal32(f float32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], math.Float32bits(f))
	w.WriteUnalignedBytes(tmp[:])
}

// WriteReal64 writes a big-endian float64 as eight unaligned bytes.
func (w *BitWriter) WriteReal64(f float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(f))
	w.WriteUnalignedBytes(tmp[:])
}
