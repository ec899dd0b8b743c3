package cursor

import (
	"fmt"
	"strings"

	"github.com/cqlrt/cqlrt"
)

// Format renders c as "name1:value1|name2:value2|…" (spec §4.K), using
// "null" for absent nullables and nil references, "true"/"false" for
// bools, decimal for integers, %g for doubles, raw contents for strings,
// "length N blob" for blobs, and "generic object" for objects.
func Format(c *Cursor) string {
	var b strings.Builder
	for i := 0; i < c.ColumnCount(); i++ {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(c.Fields[i])
		b.WriteByte(':')
		b.WriteString(formatValue(c, i))
	}
	return b.String()
}

func formatValue(c *Cursor, i int) string {
	t := c.DataTypes[i]
	switch t.Core() {
	case cqlrt.CoreString:
		r := c.Ref(i)
		if r == nil {
			return "null"
		}
		return string(cqlrt.StringBytes(r))
	case cqlrt.CoreBlob:
		r := c.Ref(i)
		if r == nil {
			return "null"
		}
		return fmt.Sprintf("length %d blob", len(cqlrt.BlobBytes(r)))
	case cqlrt.CoreObject:
		if c.Ref(i) == nil {
			return "null"
		}
		return "generic object"
	case cqlrt.CoreBool:
		if !t.NotNull() && isNull(c, i) {
			return "null"
		}
		if getBool(c, i) {
			return "true"
		}
		return "false"
	case cqlrt.CoreInt32:
		if !t.NotNull() && isNull(c, i) {
			return "null"
		}
		return fmt.Sprintf("%d", getInt32(c, i))
	case cqlrt.CoreInt64:
		if !t.NotNull() && isNull(c, i) {
			return "null"
		}
		return fmt.Sprintf("%d", getInt64(c, i))
	case cqlrt.CoreDouble:
		if !t.NotNull() && isNull(c, i) {
			return "null"
		}
		return fmt.Sprintf("%g", getDouble(c, i))
	default:
		return "null"
	}
}

// hasRowSentinel is the diff-index value/name used for a has_row mismatch
// (spec §4.K).
const hasRowSentinel = "_has_row_"

// DiffIndex returns -2 if c1/c2's has_row differ, -1 if both are empty or
// every column is equal, otherwise the zero-based index of the first
// differing column.
func DiffIndex(c1, c2 *Cursor) int {
	if c1.RowHasRow() != c2.RowHasRow() {
		return -2
	}
	if !c1.RowHasRow() {
		return -1
	}
	for i := 0; i < c1.ColumnCount(); i++ {
		if !columnEqual(c1, c2, i) {
			return i
		}
	}
	return -1
}

func columnEqual(c1, c2 *Cursor, i int) bool {
	t := c1.DataTypes[i]
	switch t.Core() {
	case cqlrt.CoreString:
		return cqlrt.StringEqual(c1.Ref(i), c2.Ref(i))
	case cqlrt.CoreBlob:
		return cqlrt.BlobEqual(c1.Ref(i), c2.Ref(i))
	case cqlrt.CoreObject:
		return cqlrt.RefEqual(c1.Ref(i), c2.Ref(i))
	default:
		if !t.NotNull() && isNull(c1, i) != isNull(c2, i) {
			return false
		}
		if !t.NotNull() && isNull(c1, i) {
			return true
		}
		off1, off2 := valueOffset(c1, i), valueOffset(c2, i)
		size := cqlrt.ScalarSize(t.Core())
		for k := 0; k < size; k++ {
			if c1.Data[int(off1)+k] != c2.Data[int(off2)+k] {
				return false
			}
		}
		return true
	}
}

// DiffCol returns the column name at idx (or the has_row sentinel for
// idx == -2), for rendering a diagnostic.
func DiffCol(c *Cursor, idx int) string {
	if idx == -2 {
		return hasRowSentinel
	}
	if idx < 0 || idx >= c.ColumnCount() {
		return ""
	}
	return c.Fields[idx]
}

// DiffVal renders "c1:…  c2:…" for the column (or has_row state) named by
// idx.
func DiffVal(c1, c2 *Cursor, idx int) string {
	if idx == -2 {
		return fmt.Sprintf("c1:%v  c2:%v", c1.RowHasRow(), c2.RowHasRow())
	}
	return fmt.Sprintf("c1:%s  c2:%s", formatValue(c1, idx), formatValue(c2, idx))
}
