package s2proto

// BitCursor is a position over an immutable byte buffer for bit-packed
// decoding. It is a value type: every read returns the advanced cursor and
// leaves the receiver untouched, so a cursor can be retained to re-read
// from an earlier position.
//
// Bits are consumed from the least significant unread bit of the current
// byte upward. In the default big-endian mode the first bits consumed become
// the most significant bits of the result, so an aligned 8-bit read returns
// the byte unchanged and an unaligned one stitches the high bits of the
// current byte above the low bits of the next.
type BitCursor struct {
	buf    []byte
	off    int // bits consumed
	little bool
}

// NewBitCursor returns a big-endian cursor at the start of b.
func NewBitCursor(b []byte) BitCursor { return BitCursor{buf: b} }

// BitCursorAt returns a big-endian cursor over b positioned bitOff bits in.
func BitCursorAt(b []byte, bitOff int) BitCursor {
	if bitOff < 0 {
		bitOff = 0
	}
	return BitCursor{buf: b, off: bitOff}
}

// NewLittleEndianBitCursor returns a cursor at the start of b that assembles
// multi-chunk values least significant chunk first. Replay attribute
// streams use this order.
func NewLittleEndianBitCursor(b []byte) BitCursor { return BitCursor{buf: b, little: true} }

// Offset returns the number of bits consumed.
func (c BitCursor) Offset() int { return c.off }

// ByteOffset returns the index of the byte holding the next unread bit.
func (c BitCursor) ByteOffset() int { return c.off >> 3 }

// Remaining returns the number of unread bits.
func (c BitCursor) Remaining() int {
	r := len(c.buf)*8 - c.off
	if r < 0 {
		return 0
	}
	return r
}

// Aligned reports whether the cursor sits on a byte boundary.
func (c BitCursor) Aligned() bool { return c.off&7 == 0 }

// Done reports whether every bit has been consumed.
func (c BitCursor) Done() bool { return c.off >= len(c.buf)*8 }

// Bytes returns the backing buffer.
func (c BitCursor) Bytes() []byte { return c.buf }

// ByteAlign rounds the offset up to the next multiple of 8. The unread
// bits of a partially consumed byte are discarded.
func (c BitCursor) ByteAlign() BitCursor {
	c.off = (c.off + 7) &^ 7
	return c
}

// ReadBits reads n bits (0 <= n <= 64) as an unsigned integer.
func (c BitCursor) ReadBits(n int) (uint64, BitCursor, error) {
	if n < 0 || n > maxReadBits {
		return 0, c, ErrBitWidth
	}
	if n > c.Remaining() {
		return 0, c, errShort(n, c.Remaining())
	}
	var result uint64
	got := 0
	off := c.off
	for got < n {
		shift := off & 7
		avail := 8 - shift
		take := n - got
		if take > avail {
			take = avail
		}
		chunk := uint64(c.buf[off>>3]>>shift) & (1<<take - 1)
		if c.little {
			result |= chunk << got
		} else {
			result |= chunk << (n - got - take)
		}
		got += take
		off += take
	}
	c.off = off
	return result, c, nil
}

// ReadBitsInt64 reads n bits (0 <= n <= 63) as a non-negative int64. It is
// used for length prefixes, which are never biased.
func (c BitCursor) ReadBitsInt64(n int) (int64, BitCursor, error) {
	if n > 63 {
		return 0, c, ErrBitWidth
	}
	v, o, err := c.ReadBits(n)
	if err != nil {
		return 0, c, err
	}
	return int64(v), o, nil
}

// ReadUnalignedByte reads the next 8 bits at any offset.
func (c BitCursor) ReadUnalignedByte() (byte, BitCursor, error) {
	v, o, err := c.ReadBits(8)
	if err != nil {
		return 0, c, err
	}
	return byte(v), o, nil
}

// ReadUnalignedBytes reads n bytes without aligning first; each byte is a
// separate 8-bit read.
func (c BitCursor) ReadUnalignedBytes(n int) ([]byte, BitCursor, error) {
	if n < 0 || n*8 > c.Remaining() {
		return nil, c, errShort(n*8, c.Remaining())
	}
	if c.Aligned() {
		return c.ReadAlignedBytes(n)
	}
	out := make([]byte, n)
	o := c
	for i := range out {
		var err error
		out[i], o, err = o.ReadUnalignedByte()
		if err != nil {
			return nil, c, err
		}
	}
	return out, o, nil
}

// ReadAlignedBytes aligns the cursor to a byte boundary and copies the next
// n bytes.
func (c BitCursor) ReadAlignedBytes(n int) ([]byte, BitCursor, error) {
	a := c.ByteAlign()
	start := a.off >> 3
	if n < 0 || start+n > len(a.buf) {
		have := len(a.buf) - start
		if have < 0 {
			have = 0
		}
		return nil, c, errShort(n*8, have*8)
	}
	out := make([]byte, n)
	copy(out, a.buf[start:start+n])
	a.off += n * 8
	return out, a, nil
}

// ReadBitArray reads n bits into ceil(n/8) bytes. Each full byte is an
// 8-bit read; the final partial byte holds the remaining n%8 bits in its
// low bits, zero padded.
func (c BitCursor) ReadBitArray(n int) ([]byte, BitCursor, error) {
	if n < 0 || n > c.Remaining() {
		return nil, c, errShort(n, c.Remaining())
	}
	out := make([]byte, (n+7)/8)
	o := c
	for i := range out {
		take := n - i*8
		if take > 8 {
			take = 8
		}
		v, next, err := o.ReadBits(take)
		if err != nil {
			return nil, c, err
		}
		out[i] = byte(v)
		o = next
	}
	return out, o, nil
}
