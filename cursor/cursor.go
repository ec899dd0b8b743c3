// Package cursor implements the dynamic cursor descriptor used by every
// generic operation in this runtime (spec §4.C): hashing, equality,
// formatting, diffing, and the blob codecs in package blob all operate on
// a Cursor rather than a generated per-shape struct.
package cursor

import (
	"github.com/cqlrt/cqlrt"
)

// Cursor is a non-owning descriptor over one row of caller-owned memory.
// It carries no state beyond borrowed slices: Data is the row's scalar
// byte prefix, Refs is the row's reference-column slice (see the design
// note in typecode.go — reference columns never live inline in Data), and
// ColOffsets/DataTypes/Fields describe the shape.
type Cursor struct {
	// HasRow is a pointer into caller memory so SetHasRow(false) (used by
	// decode failures, spec §4.F) is visible to the cursor's owner.
	HasRow *bool

	// Data is the scalar-column byte prefix: every non-reference column's
	// bytes back to back at the offsets named by ColOffsets.
	Data []byte

	// Refs holds one *cqlrt.Ref (or nil) per reference-typed column, in
	// declaration order restricted to reference columns.
	Refs []*cqlrt.Ref

	// ColOffsets[i] is the byte offset of scalar column i within Data,
	// indexed by declaration-order column index. Entries for reference
	// columns are unused; refIndex translates a column index into a Refs
	// index.
	ColOffsets []uint32

	// DataTypes[i] is the type code of column i, in declaration order
	// (scalar and reference columns interleaved as declared).
	DataTypes []cqlrt.TypeCode

	// Fields[i] is the declared name of column i, borrowed from static
	// storage.
	Fields []string
}

// ColumnCount returns the number of declared columns.
func (c *Cursor) ColumnCount() int {
	return len(c.DataTypes)
}

// refIndex maps a declaration-order column index to its position within
// Refs, or -1 if column i is not reference-typed.
func (c *Cursor) refIndex(i int) int {
	idx := 0
	for j := 0; j < i; j++ {
		if c.DataTypes[j].IsRef() {
			idx++
		}
	}
	if c.DataTypes[i].IsRef() {
		return idx
	}
	return -1
}

// scalarOffset returns the byte offset of a non-reference column i within
// Data. ColOffsets is indexed directly by declaration-order column index
// (entries for reference columns are unused), precomputed once by
// NewShape.
func (c *Cursor) scalarOffset(i int) uint32 {
	return c.ColOffsets[i]
}

// Ref returns the reference stored at column i. Column i must be
// reference-typed.
func (c *Cursor) Ref(i int) *cqlrt.Ref {
	cqlrt.Contract(c.DataTypes[i].IsRef(), "cursor.Ref: column %d is not reference-typed", i)
	idx := c.refIndex(i)
	return c.Refs[idx]
}

// SetRef stores v at reference column i, releasing whatever was there
// before (spec §4.D: "for reference types it releases any prior value
// stored at the destination before assigning the new one").
func (c *Cursor) SetRef(i int, v *cqlrt.Ref) {
	cqlrt.Contract(c.DataTypes[i].IsRef(), "cursor.SetRef: column %d is not reference-typed", i)
	idx := c.refIndex(i)
	if c.Refs[idx] != v {
		cqlrt.Release(c.Refs[idx])
	}
	c.Refs[idx] = v
}

// Release releases every reference column's value, used when discarding a
// partially decoded cursor (spec §4.F "releases any partially-filled
// references").
func (c *Cursor) Release() {
	for i, r := range c.Refs {
		cqlrt.Release(r)
		c.Refs[i] = nil
	}
}

// SetHasRow updates the caller-owned has_row flag, if present.
func (c *Cursor) SetHasRow(v bool) {
	if c.HasRow != nil {
		*c.HasRow = v
	}
}

// RowHasRow reports the current has_row flag (false if HasRow is nil,
// treated as an empty cursor).
func (c *Cursor) RowHasRow() bool {
	return c.HasRow != nil && *c.HasRow
}
