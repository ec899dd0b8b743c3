package cqlrt

// ByteBuf is a growable byte buffer used by rowset construction, the
// partitioner, and the blob codecs (§3 "Bytebuf"). Growth doubles capacity
// up to growthCap, then grows linearly by growthCap bytes at a time,
// matching the charbuf growth policy this runtime borrows its shape from.
type ByteBuf struct {
	data []byte
}

// growthCap is the capacity above which growth becomes linear rather than
// doubling, so a single pathological allocation can't balloon memory use.
const growthCap = 1 << 20 // 1 MiB

// MaxByteBufSize is the hard ceiling past which Grow reports
// ResourceExhaustedError instead of growing further.
const MaxByteBufSize = 1 << 30 // 1 GiB

// NewByteBuf returns an empty buffer with capacity at least hint.
func NewByteBuf(hint int) *ByteBuf {
	if hint < 0 {
		hint = 0
	}
	return &ByteBuf{data: make([]byte, 0, hint)}
}

// Len returns the number of bytes currently written.
func (b *ByteBuf) Len() int {
	return len(b.data)
}

// Bytes returns the written prefix. The returned slice aliases the
// buffer's storage and is invalidated by the next Append/Grow/Reset.
func (b *ByteBuf) Bytes() []byte {
	return b.data
}

// Reset truncates the buffer to zero length without releasing capacity.
func (b *ByteBuf) Reset() {
	b.data = b.data[:0]
}

// Grow reserves n zero-initialized bytes at the end of the buffer and
// returns the slice backing them, so the caller can write a fixed-size row
// or payload in place. Returns a ResourceExhaustedError if the resulting
// size would exceed MaxByteBufSize.
func (b *ByteBuf) Grow(n int) ([]byte, error) {
	newLen := len(b.data) + n
	if newLen > MaxByteBufSize {
		return nil, NewResourceExhaustedError("bytebuf.grow", newLen)
	}
	b.ensureCap(newLen)
	start := len(b.data)
	b.data = b.data[:newLen]
	for i := start; i < newLen; i++ {
		b.data[i] = 0
	}
	return b.data[start:newLen], nil
}

// Append copies p onto the end of the buffer.
func (b *ByteBuf) Append(p []byte) error {
	dst, err := b.Grow(len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// AppendByte appends a single byte.
func (b *ByteBuf) AppendByte(c byte) error {
	dst, err := b.Grow(1)
	if err != nil {
		return err
	}
	dst[0] = c
	return nil
}

func (b *ByteBuf) ensureCap(need int) {
	if cap(b.data) >= need {
		return
	}
	newCap := cap(b.data)
	if newCap == 0 {
		newCap = 16
	}
	for newCap < need {
		if newCap < growthCap {
			newCap *= 2
		} else {
			newCap += growthCap
		}
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}
