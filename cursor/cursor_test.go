package cursor_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/cursor"
)

func testShape() *cursor.Shape {
	return cursor.NewShape(
		[]string{"id", "name", "note"},
		[]cqlrt.TypeCode{
			cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreString, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreBlob, false, false),
		},
	)
}

func TestShapeLayout(t *testing.T) {
	s := testShape()
	assert.Equal(t, 3, s.ColumnCount())
	assert.Equal(t, 2, s.RefCount())
	assert.Equal(t, 0, s.ColumnIndex("id"))
	assert.Equal(t, -1, s.ColumnIndex("missing"))
}

func TestCursorSetGetRef(t *testing.T) {
	s := testShape()
	hasRow := true
	c := s.NewCursor(&hasRow)

	c.SetRef(1, cqlrt.NewString([]byte("alice")))
	assert.Equal(t, "alice", string(cqlrt.StringBytes(c.Ref(1))))

	c.SetRef(2, nil)
	assert.Nil(t, c.Ref(2))
}

func TestCursorReleaseClearsRefs(t *testing.T) {
	cqlrt.ResetOutstandingRefs()
	s := testShape()
	c := s.NewCursor(nil)
	c.SetRef(1, cqlrt.NewString([]byte("x")))
	c.SetRef(2, cqlrt.NewBlob([]byte{1}))
	c.Release()
	assert.Nil(t, c.Ref(1))
	assert.Nil(t, c.Ref(2))
	assert.Equal(t, int64(0), cqlrt.OutstandingRefs())
}

func TestFormat(t *testing.T) {
	s := cursor.NewShape(
		[]string{"n", "active"},
		[]cqlrt.TypeCode{
			cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreBool, true, false),
		},
	)
	hasRow := true
	c := s.NewCursor(&hasRow)
	stmt := &fakeStmt{
		cols:   []engineValue{{i32: 42}, {b: true}},
		isNull: []bool{false, false},
	}
	cursor.Multifetch(c, stmt, nil)
	assert.Equal(t, "n:42|active:true", cursor.Format(c))
}

type fakeStmt struct {
	cols      []engineValue
	isNull    []bool
	stepCalls int
}

type engineValue struct {
	i32 int32
	i64 int64
	f64 float64
	b   bool
	s   string
	blb []byte
}

func (f *fakeStmt) BindInt32(i int, v int32) error    { return nil }
func (f *fakeStmt) BindInt64(i int, v int64) error    { return nil }
func (f *fakeStmt) BindDouble(i int, v float64) error { return nil }
func (f *fakeStmt) BindBool(i int, v bool) error      { return nil }
func (f *fakeStmt) BindText(i int, v string) error    { return nil }
func (f *fakeStmt) BindBlob(i int, v []byte) error    { return nil }
func (f *fakeStmt) BindNull(i int) error              { return nil }
func (f *fakeStmt) Step(ctx context.Context) (cqlrt.EngineStatus, error) {
	f.stepCalls++
	return cqlrt.StatusRow, nil
}
func (f *fakeStmt) ColumnCount() int           { return len(f.cols) }
func (f *fakeStmt) ColumnIsNull(i int) bool    { return f.isNull[i] }
func (f *fakeStmt) ColumnInt32(i int) int32    { return f.cols[i].i32 }
func (f *fakeStmt) ColumnInt64(i int) int64    { return f.cols[i].i64 }
func (f *fakeStmt) ColumnDouble(i int) float64 { return f.cols[i].f64 }
func (f *fakeStmt) ColumnBool(i int) bool      { return f.cols[i].b }
func (f *fakeStmt) ColumnText(i int) string    { return f.cols[i].s }
func (f *fakeStmt) ColumnBlob(i int) []byte    { return f.cols[i].blb }
func (f *fakeStmt) Reset() error               { return nil }
func (f *fakeStmt) Finalize() error            { return nil }
func (f *fakeStmt) TraceID() uuid.UUID         { return uuid.Nil }

func TestMultifetchScalarAndRef(t *testing.T) {
	s := testShape()
	hasRow := true
	c := s.NewCursor(&hasRow)

	stmt := &fakeStmt{
		cols: []engineValue{
			{i32: 7},
			{s: "bob"},
			{blb: []byte{1, 2, 3}},
		},
		isNull: []bool{false, false, false},
	}
	cursor.Multifetch(c, stmt, nil)

	require.Equal(t, "bob", string(cqlrt.StringBytes(c.Ref(1))))
	require.Equal(t, []byte{1, 2, 3}, cqlrt.BlobBytes(c.Ref(2)))
}

func TestMultifetchNullableBlob(t *testing.T) {
	s := testShape()
	hasRow := true
	c := s.NewCursor(&hasRow)

	stmt := &fakeStmt{
		cols:   []engineValue{{i32: 1}, {s: "x"}, {}},
		isNull: []bool{false, false, true},
	}
	cursor.Multifetch(c, stmt, nil)
	assert.Nil(t, c.Ref(2))
}

func TestDiffIndex(t *testing.T) {
	s := cursor.NewShape(
		[]string{"a", "b"},
		[]cqlrt.TypeCode{
			cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreString, true, false),
		},
	)
	has1, has2 := true, true
	c1 := s.NewCursor(&has1)
	c2 := s.NewCursor(&has2)
	c1.SetRef(1, cqlrt.NewString([]byte("same")))
	c2.SetRef(1, cqlrt.NewString([]byte("same")))

	assert.Equal(t, -1, cursor.DiffIndex(c1, c2))

	c2.SetRef(1, cqlrt.NewString([]byte("different")))
	assert.Equal(t, 1, cursor.DiffIndex(c1, c2))

	has2 = false
	assert.Equal(t, -2, cursor.DiffIndex(c1, c2))
}

func TestDiffColAndVal(t *testing.T) {
	assert.Equal(t, "_has_row_", cursor.DiffCol(nil, -2))

	s := cursor.NewShape(
		[]string{"a"},
		[]cqlrt.TypeCode{cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false)},
	)
	has1, has2 := true, false
	c1 := s.NewCursor(&has1)
	c2 := s.NewCursor(&has2)
	assert.Equal(t, "a", cursor.DiffCol(c1, 0))
	assert.Equal(t, "c1:true  c2:false", cursor.DiffVal(c1, c2, -2))
	assert.Equal(t, "c1:0  c2:0", cursor.DiffVal(c1, c2, 0))
}
