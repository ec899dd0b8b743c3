// Package rowset implements the shape-metadata-driven result-set
// representation (spec §4.E): a contiguous row buffer plus one reference
// slice per row, described by one Meta shared across rows of a shape so
// equality, hashing, identity and slicing can be written generically.
package rowset

import (
	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/cursor"
)

// Meta describes one row shape plus the identity-column subset used by
// "same row" comparisons (spec §4.E). Meta values are built once per
// generated row type and shared by every ResultSet of that shape; two
// ResultSets are only identity-comparable if they share the exact same
// *Meta pointer ("single-shape contract").
type Meta struct {
	Shape      *cursor.Shape
	IdentityOf []int // declaration-order column indices, or nil for "use all columns"
}

// NewMeta builds a Meta over fields/types with the given identity column
// indices (nil means every column participates in identity comparisons).
func NewMeta(fields []string, types []cqlrt.TypeCode, identity []int) *Meta {
	return &Meta{Shape: cursor.NewShape(fields, types), IdentityOf: identity}
}

// ResultSet is a finite, random-access, reference-counted sequence of rows
// of identical shape (spec §4.E). The zero value is not usable; construct
// via Builder or NewResultSet.
type ResultSet struct {
	ref  *cqlrt.Ref
	meta *Meta
	data []byte       // rowSize*count bytes, row-major
	refs [][]*cqlrt.Ref // one ref slice per row
}

// Meta returns the result set's shape/identity metadata.
func (r *ResultSet) Meta() *Meta { return r.meta }

// Count returns the number of rows.
func (r *ResultSet) Count() int { return len(r.refs) }

// Ref returns the result set's reference header, so callers can
// Retain/Release it like any other reference-counted value (a rowset
// "is reference-counted as one object", spec §4.E/glossary).
func (r *ResultSet) Ref() *cqlrt.Ref { return r.ref }

func (r *ResultSet) rowBytes(row int) []byte {
	size := r.meta.Shape.DataSize()
	return r.data[row*size : (row+1)*size]
}

// Row returns a cursor view over row i, for use with the generic column
// codec and formatter in package cursor.
func (r *ResultSet) Row(i int) *cursor.Cursor {
	cqlrt.Contract(i >= 0 && i < r.Count(), "rowset.Row: index %d out of range (count %d)", i, r.Count())
	hasRow := true
	return r.meta.Shape.View(r.rowBytes(i), r.refs[i], &hasRow)
}

// NewResultSet wraps a pre-filled row buffer and per-row reference slices
// as a ResultSet with ref_count 1. Used by Builder.Finish and by Slice.
func NewResultSet(meta *Meta, data []byte, refs [][]*cqlrt.Ref) *ResultSet {
	size := meta.Shape.DataSize()
	cqlrt.Contract(len(data) == size*len(refs), "rowset.NewResultSet: data length %d inconsistent with %d rows of size %d", len(data), len(refs), size)
	rs := &ResultSet{meta: meta, data: data, refs: refs}
	rs.ref = cqlrt.NewRef(cqlrt.KindResultSet, rs, rs.finalize)
	return rs
}

func (r *ResultSet) finalize() {
	for _, row := range r.refs {
		for i, ref := range row {
			cqlrt.Release(ref)
			row[i] = nil
		}
	}
}

// Builder accumulates rows into a growable buffer while streaming a
// statement, matching spec §4.E's construction contract: "allocate
// rowsize zero-initialized bytes... multifetch into that row... on error,
// release every materialized row's references and free the buffer."
type Builder struct {
	meta *Meta
	buf  *cqlrt.ByteBuf
	refs [][]*cqlrt.Ref
}

// NewBuilder starts an empty builder for meta.
func NewBuilder(meta *Meta) *Builder {
	return &Builder{meta: meta, buf: cqlrt.NewByteBuf(meta.Shape.DataSize() * 16)}
}

// AddRow reserves one zero-initialized row and returns a cursor view over
// it for the caller to multifetch into. The returned cursor must be fully
// written before the next call to AddRow: growth may relocate the
// underlying buffer, and only bytes already written at that point are
// carried over.
func (b *Builder) AddRow() (*cursor.Cursor, error) {
	row, err := b.buf.Grow(b.meta.Shape.DataSize())
	if err != nil {
		return nil, err
	}
	refs := make([]*cqlrt.Ref, b.meta.Shape.RefCount())
	b.refs = append(b.refs, refs)
	hasRow := true
	return b.meta.Shape.View(row, refs, &hasRow), nil
}

// Abort releases every row materialized so far, for the "on error" branch
// of §4.E's construction contract.
func (b *Builder) Abort() {
	for _, row := range b.refs {
		for _, ref := range row {
			cqlrt.Release(ref)
		}
	}
	b.refs = nil
	b.buf.Reset()
}

// Finish hands the accumulated rows to a new ResultSet.
func (b *Builder) Finish() *ResultSet {
	return NewResultSet(b.meta, b.buf.Bytes(), b.refs)
}
