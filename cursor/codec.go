package cursor

import (
	"math"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/engine"
)

// FetchColumn reads column i of stmt's current row into cursor column dst,
// dispatching on the column's core type (spec §4.D). Nullable primitives
// consult the engine's null indicator; reference columns go through
// Cursor.SetRef so the prior value is released before the new one is
// assigned. Null references are represented as a nil *cqlrt.Ref, never a
// separate is_null flag.
func FetchColumn(c *Cursor, dst int, stmt engine.Stmt, src int) {
	t := c.DataTypes[dst]
	if !t.NotNull() && t.Core() != cqlrt.CoreObject && stmt.ColumnIsNull(src) {
		switch t.Core() {
		case cqlrt.CoreString, cqlrt.CoreBlob:
			c.SetRef(dst, nil)
		default:
			setNull(c, dst, true)
		}
		return
	}
	if !t.NotNull() {
		setNull(c, dst, false)
	}

	switch t.Core() {
	case cqlrt.CoreInt32:
		putInt32(c, dst, stmt.ColumnInt32(src))
	case cqlrt.CoreInt64:
		putInt64(c, dst, stmt.ColumnInt64(src))
	case cqlrt.CoreDouble:
		putDouble(c, dst, stmt.ColumnDouble(src))
	case cqlrt.CoreBool:
		putBool(c, dst, stmt.ColumnBool(src))
	case cqlrt.CoreString:
		c.SetRef(dst, cqlrt.NewString([]byte(stmt.ColumnText(src))))
	case cqlrt.CoreBlob:
		c.SetRef(dst, cqlrt.NewBlob(stmt.ColumnBlob(src)))
	default:
		cqlrt.Contract(false, "cursor.FetchColumn: unsupported core type %s", t.Core())
	}
}

// BindColumn binds cursor column src as parameter i of stmt (spec §4.D).
func BindColumn(stmt engine.Stmt, i int, c *Cursor, src int) {
	t := c.DataTypes[src]
	if t.Core() == cqlrt.CoreString || t.Core() == cqlrt.CoreBlob {
		r := c.Ref(src)
		if r == nil {
			_ = stmt.BindNull(i)
			return
		}
		if t.Core() == cqlrt.CoreString {
			_ = stmt.BindText(i, string(cqlrt.StringBytes(r)))
		} else {
			_ = stmt.BindBlob(i, cqlrt.BlobBytes(r))
		}
		return
	}
	if !t.NotNull() && isNull(c, src) {
		_ = stmt.BindNull(i)
		return
	}
	switch t.Core() {
	case cqlrt.CoreInt32:
		_ = stmt.BindInt32(i, getInt32(c, src))
	case cqlrt.CoreInt64:
		_ = stmt.BindInt64(i, getInt64(c, src))
	case cqlrt.CoreDouble:
		_ = stmt.BindDouble(i, getDouble(c, src))
	case cqlrt.CoreBool:
		_ = stmt.BindBool(i, getBool(c, src))
	default:
		cqlrt.Contract(false, "cursor.BindColumn: unsupported core type %s", t.Core())
	}
}

// Multifetch reads N columns of one row of stmt's current step into c,
// dispatching per-column on types. If sel is non-nil, only columns where
// sel[i] is true participate; others are skipped, though stmt's own
// column indices still advance one-for-one with c's declared columns
// (spec §4.D: "absent entries are skipped, their argument storage is
// still consumed" — here that means the engine column index always
// matches the cursor column index, selection just elides the write).
func Multifetch(c *Cursor, stmt engine.Stmt, sel []bool) {
	for i := 0; i < c.ColumnCount(); i++ {
		if sel != nil && !sel[i] {
			continue
		}
		FetchColumn(c, i, stmt, i)
	}
}

// Multibind binds N parameters of stmt from c, dispatching per-column on
// types, honoring an optional selection predicate exactly as Multifetch
// does.
func Multibind(stmt engine.Stmt, c *Cursor, sel []bool) {
	for i := 0; i < c.ColumnCount(); i++ {
		if sel != nil && !sel[i] {
			continue
		}
		BindColumn(stmt, i, c, i)
	}
}

// The following scalar get/put/null helpers operate on Data at the
// column's scalarOffset, matching the ScalarSize for its core type.
// Bool columns additionally need an is_null bit distinct from their
// value bit; both are packed into a presence byte per nullable/bool
// column. To keep the in-memory row self-contained without a separate
// bitvector (that packing is specific to the wire codec in package blob),
// the in-memory Cursor reserves one extra leading byte per nullable
// scalar column as its null flag; NewShape lays this out (see shape.go).

func setNull(c *Cursor, i int, isNull bool) {
	off := c.scalarOffset(i)
	if isNull {
		c.Data[off] = 1
	} else {
		c.Data[off] = 0
	}
}

func isNull(c *Cursor, i int) bool {
	return c.Data[c.scalarOffset(i)] != 0
}

func valueOffset(c *Cursor, i int) uint32 {
	off := c.scalarOffset(i)
	if !c.DataTypes[i].NotNull() {
		off++
	}
	return off
}

func putInt32(c *Cursor, i int, v int32) {
	off := valueOffset(c, i)
	putLE32(c.Data[off:], uint32(v))
}

func getInt32(c *Cursor, i int) int32 {
	off := valueOffset(c, i)
	return int32(getLE32(c.Data[off:]))
}

func putInt64(c *Cursor, i int, v int64) {
	off := valueOffset(c, i)
	putLE64(c.Data[off:], uint64(v))
}

func getInt64(c *Cursor, i int) int64 {
	off := valueOffset(c, i)
	return int64(getLE64(c.Data[off:]))
}

func putDouble(c *Cursor, i int, v float64) {
	off := valueOffset(c, i)
	putLE64(c.Data[off:], math.Float64bits(v))
}

func getDouble(c *Cursor, i int) float64 {
	off := valueOffset(c, i)
	return math.Float64frombits(getLE64(c.Data[off:]))
}

func putBool(c *Cursor, i int, v bool) {
	off := valueOffset(c, i)
	if v {
		c.Data[off] = 1
	} else {
		c.Data[off] = 0
	}
}

func getBool(c *Cursor, i int) bool {
	off := valueOffset(c, i)
	return c.Data[off] != 0
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func getLE64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
