package blob

import (
	"math"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/cursor"
)

// These scalar accessors duplicate the layout logic in package cursor
// (null-flag byte immediately preceding a nullable scalar's value) since
// that package keeps its accessors unexported; the layout itself is
// public contract via Cursor.ColOffsets/DataTypes/Data.

func valueOffset(c *cursor.Cursor, i int) int {
	off := int(c.ColOffsets[i])
	if !c.DataTypes[i].NotNull() {
		off++
	}
	return off
}

func colIsNull(c *cursor.Cursor, i int) bool {
	if !c.DataTypes[i].NotNull() {
		return c.Data[c.ColOffsets[i]] != 0
	}
	return false
}

func setNullFlag(c *cursor.Cursor, i int, isNull bool) {
	if isNull {
		c.Data[c.ColOffsets[i]] = 1
	} else {
		c.Data[c.ColOffsets[i]] = 0
	}
}

func boolValue(c *cursor.Cursor, i int) bool {
	return c.Data[valueOffset(c, i)] != 0
}

func setBool(c *cursor.Cursor, i int, v bool) {
	setNullFlag(c, i, false)
	if v {
		c.Data[valueOffset(c, i)] = 1
	} else {
		c.Data[valueOffset(c, i)] = 0
	}
}

func int32Value(c *cursor.Cursor, i int) int32 {
	off := valueOffset(c, i)
	return int32(le32(c.Data[off:]))
}

func setInt32(c *cursor.Cursor, i int, v int32) {
	setNullFlag(c, i, false)
	putLE32(c.Data[valueOffset(c, i):], uint32(v))
}

func int64Value(c *cursor.Cursor, i int) int64 {
	off := valueOffset(c, i)
	return int64(le64(c.Data[off:]))
}

func setInt64(c *cursor.Cursor, i int, v int64) {
	setNullFlag(c, i, false)
	putLE64(c.Data[valueOffset(c, i):], uint64(v))
}

func doubleValue(c *cursor.Cursor, i int) float64 {
	off := valueOffset(c, i)
	return math.Float64frombits(le64(c.Data[off:]))
}

func setDouble(c *cursor.Cursor, i int, v float64) {
	setNullFlag(c, i, false)
	putLE64(c.Data[valueOffset(c, i):], math.Float64bits(v))
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func le64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// appendZigzag writes v as a zigzag-encoded varint (7 bits/byte, MSB
// continuation bit), spec §4.F.
func appendZigzag(buf *cqlrt.ByteBuf, v int64) error {
	u := uint64((v << 1) ^ (v >> 63))
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		if err := buf.AppendByte(b); err != nil {
			return err
		}
		if u == 0 {
			return nil
		}
	}
}

// readZigzag decodes a zigzag varint from the start of data, returning the
// value, the number of bytes consumed, and false if data is truncated or
// the varint exceeds 10 bytes (the maximum for a 64-bit zigzag value).
func readZigzag(data []byte) (int64, int, bool) {
	var u uint64
	var shift uint
	for i := 0; i < len(data) && i < 10; i++ {
		b := data[i]
		u |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			v := int64(u>>1) ^ -int64(u&1)
			return v, i + 1, true
		}
		shift += 7
	}
	return 0, 0, false
}
