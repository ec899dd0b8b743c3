package cursor

import "github.com/cqlrt/cqlrt"

// Shape describes one row layout: the declared columns' names and type
// codes, in declaration order (spec §4.C). It is built once per
// generated-code row type and shared by every cursor/row of that shape;
// rowset.Meta holds a *Shape and adds the identity-column subset.
type Shape struct {
	Fields     []string
	Types      []cqlrt.TypeCode
	colOffsets []uint32 // scalarOffset(i) for scalar columns, precomputed
	dataSize   int
	refCount   int
}

// NewShape validates and precomputes the byte layout for fields/types.
func NewShape(fields []string, types []cqlrt.TypeCode) *Shape {
	cqlrt.Contract(len(fields) == len(types), "cursor.NewShape: %d fields but %d types", len(fields), len(types))
	s := &Shape{Fields: fields, Types: types}
	s.colOffsets = make([]uint32, len(types))
	var off uint32
	for i, t := range types {
		if t.IsRef() {
			s.refCount++
			continue
		}
		s.colOffsets[i] = off
		if !t.NotNull() {
			off++ // null flag byte
		}
		off += uint32(cqlrt.ScalarSize(t.Core()))
	}
	s.dataSize = int(off)
	return s
}

// ColumnCount returns the number of declared columns.
func (s *Shape) ColumnCount() int { return len(s.Types) }

// DataSize returns the byte length of the scalar prefix a Cursor/row of
// this shape needs.
func (s *Shape) DataSize() int { return s.dataSize }

// RefCount returns the number of reference-typed columns.
func (s *Shape) RefCount() int { return s.refCount }

// ColumnIndex returns the declaration-order index of name, or -1.
func (s *Shape) ColumnIndex(name string) int {
	for i, f := range s.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// NewCursor allocates a zero-valued Data/Refs pair for this shape and
// returns a Cursor over it, with hasRow as the caller-owned has_row cell
// (nil if the caller doesn't need one).
func (s *Shape) NewCursor(hasRow *bool) *Cursor {
	return &Cursor{
		HasRow:     hasRow,
		Data:       make([]byte, s.dataSize),
		Refs:       make([]*cqlrt.Ref, s.refCount),
		ColOffsets: s.colOffsets,
		DataTypes:  s.Types,
		Fields:     s.Fields,
	}
}

// View wraps existing data/refs slices (e.g. a row inside a rowset's
// shared buffer) as a Cursor over this shape, without copying.
func (s *Shape) View(data []byte, refs []*cqlrt.Ref, hasRow *bool) *Cursor {
	return &Cursor{
		HasRow:     hasRow,
		Data:       data,
		Refs:       refs,
		ColOffsets: s.colOffsets,
		DataTypes:  s.Types,
		Fields:     s.Fields,
	}
}
