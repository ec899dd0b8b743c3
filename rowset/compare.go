package rowset

import "github.com/cqlrt/cqlrt"

// djb2 mirrors cqlrt's internal string/blob hash so the non-reference
// prefix hashes with the same algorithm as the reference columns it's
// combined with (spec §4.E: "DJB2 over the prefix, combined with
// per-reference hashes in order").
func djb2(data []byte) uint64 {
	var h uint64 = 5381
	for _, c := range data {
		h = h*33 ^ uint64(c)
	}
	return h
}

// RowEqual reports whether row a of rs1 and row b of rs2 are equal: the
// non-reference byte prefix matches exactly (memcmp) and every reference
// column is reference-equal (spec §4.E). Both result sets must share
// identical Shape byte layouts (not required to share the same *Meta).
func RowEqual(rs1 *ResultSet, a int, rs2 *ResultSet, b int) bool {
	d1, d2 := rs1.rowBytes(a), rs2.rowBytes(b)
	if len(d1) != len(d2) {
		return false
	}
	for i := range d1 {
		if d1[i] != d2[i] {
			return false
		}
	}
	r1, r2 := rs1.refs[a], rs2.refs[b]
	if len(r1) != len(r2) {
		return false
	}
	for i := range r1 {
		if !cqlrt.RefEqual(r1[i], r2[i]) {
			return false
		}
	}
	return true
}

// RowHash computes a row's hash as DJB2 over its scalar prefix combined
// with every reference column's hash in order (spec §4.E).
func RowHash(rs *ResultSet, row int) uint64 {
	h := djb2(rs.rowBytes(row))
	for _, ref := range rs.refs[row] {
		h = h*33 ^ cqlrt.RefHash(ref)
	}
	return h
}

// scalarSize maps a core type to its in-row byte size, used by
// RowIdentical to compare identity columns directly regardless of
// declared column order (spec §4.E: "a size-by-core-type lookup because
// the declared column order may not match the in-memory offset order").
func scalarSize(c cqlrt.CoreType) int {
	return cqlrt.ScalarSize(c)
}

// RowIdentical implements "same row" comparison over a Meta's identity
// column subset (spec §4.E). Both result sets must share the exact same
// *Meta pointer — the single-shape contract.
func RowIdentical(rs1 *ResultSet, a int, rs2 *ResultSet, b int) bool {
	cqlrt.Contract(rs1.meta == rs2.meta, "rowset.RowIdentical: result sets do not share a Meta")
	meta := rs1.meta
	cols := meta.IdentityOf
	if cols == nil {
		cols = allColumns(meta.Shape.ColumnCount())
	}
	for _, col := range cols {
		t := meta.Shape.Types[col]
		if t.IsRef() {
			if !cqlrt.RefEqual(rs1.Row(a).Ref(col), rs2.Row(b).Ref(col)) {
				return false
			}
			continue
		}
		c1, c2 := rs1.Row(a), rs2.Row(b)
		off1 := c1.ColOffsets[col]
		off2 := c2.ColOffsets[col]
		size := scalarSize(t.Core())
		nullOff := 0
		if !t.NotNull() {
			null1 := c1.Data[off1] != 0
			null2 := c2.Data[off2] != 0
			if null1 != null2 {
				return false
			}
			if null1 {
				continue // both null: equal regardless of value bytes
			}
			nullOff = 1
		}
		base1 := int(off1) + nullOff
		base2 := int(off2) + nullOff
		for k := 0; k < size; k++ {
			if c1.Data[base1+k] != c2.Data[base2+k] {
				return false
			}
		}
	}
	return true
}

func allColumns(n int) []int {
	cols := make([]int, n)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

// Slice produces a new result set containing rows [from, from+count),
// retaining every reference column once (spec §4.E).
func Slice(rs *ResultSet, from, count int) *ResultSet {
	cqlrt.Contract(from >= 0 && count >= 0 && from+count <= rs.Count(), "rowset.Slice: [%d,%d) out of range for count %d", from, from+count, rs.Count())
	size := rs.meta.Shape.DataSize()
	data := make([]byte, size*count)
	copy(data, rs.data[from*size:(from+count)*size])

	refs := make([][]*cqlrt.Ref, count)
	for i := 0; i < count; i++ {
		src := rs.refs[from+i]
		row := make([]*cqlrt.Ref, len(src))
		for j, r := range src {
			cqlrt.Retain(r)
			row[j] = r
		}
		refs[i] = row
	}
	return NewResultSet(rs.meta, data, refs)
}
