package blob_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/blob"
	"github.com/cqlrt/cqlrt/cursor"
)

func shapeISB() *cursor.Shape {
	return cursor.NewShape(
		[]string{"i", "s", "b"},
		[]cqlrt.TypeCode{
			cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreString, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreBlob, false, false),
		},
	)
}

func TestEncodeKnownBytes(t *testing.T) {
	s := shapeISB()
	hasRow := true
	c := s.NewCursor(&hasRow)

	// i=42, s="hello", b=nil
	c.SetRef(1, cqlrt.NewString([]byte("hello")))
	c.SetRef(2, nil)
	writeInt32ViaBind(t, c, 0, 42)

	encoded, err := blob.Encode(c)
	require.NoError(t, err)

	// byte 0,1,2: 'I','S','b' ; byte 3: 0 terminator
	require.True(t, len(encoded) > 4)
	assert.Equal(t, byte('I'), encoded[0])
	assert.Equal(t, byte('S'), encoded[1])
	assert.Equal(t, byte('b'), encoded[2])
	assert.Equal(t, byte(0), encoded[3])
	// 1-bit bitvector (1 nullable column: b), absent => zero byte
	assert.Equal(t, byte(0), encoded[4])
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := shapeISB()
	hasRow := true
	c := s.NewCursor(&hasRow)
	c.SetRef(1, cqlrt.NewString([]byte("hello world")))
	c.SetRef(2, cqlrt.NewBlob([]byte{1, 2, 3, 4}))
	writeInt32ViaBind(t, c, 0, 1234)

	encoded, err := blob.Encode(c)
	require.NoError(t, err)

	decodedHasRow := false
	out := s.NewCursor(&decodedHasRow)
	require.NoError(t, blob.Decode(out, encoded))
	assert.True(t, decodedHasRow)
	assert.Equal(t, "hello world", string(cqlrt.StringBytes(out.Ref(1))))
	assert.Equal(t, []byte{1, 2, 3, 4}, cqlrt.BlobBytes(out.Ref(2)))
}

func TestDecodeColumnSuffixExtension(t *testing.T) {
	// producer has 2 columns, consumer has 3 (extra nullable trailing).
	producerShape := cursor.NewShape(
		[]string{"i", "s"},
		[]cqlrt.TypeCode{
			cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreString, true, false),
		},
	)
	consumerShape := cursor.NewShape(
		[]string{"i", "s", "extra"},
		[]cqlrt.TypeCode{
			cqlrt.NewTypeCode(cqlrt.CoreInt32, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreString, true, false),
			cqlrt.NewTypeCode(cqlrt.CoreBlob, false, false),
		},
	)
	hasRow := true
	src := producerShape.NewCursor(&hasRow)
	src.SetRef(1, cqlrt.NewString([]byte("x")))
	writeInt32ViaBind(t, src, 0, 9)
	encoded, err := blob.Encode(src)
	require.NoError(t, err)

	dstHasRow := false
	dst := consumerShape.NewCursor(&dstHasRow)
	require.NoError(t, blob.Decode(dst, encoded))
	assert.True(t, dstHasRow)
	assert.Equal(t, "x", string(cqlrt.StringBytes(dst.Ref(1))))
	assert.Nil(t, dst.Ref(2))
}

func TestDecodeTruncatedSetsHasRowFalse(t *testing.T) {
	s := shapeISB()
	hasRow := true
	c := s.NewCursor(&hasRow)
	err := blob.Decode(c, []byte{'I', 'S'}) // no terminator
	require.Error(t, err)
	assert.False(t, hasRow)
	assert.True(t, cqlrt.IsDecodeError(err))
}

func TestStreamRoundTrip(t *testing.T) {
	s := shapeISB()
	var blobs [][]byte
	for i, name := range []string{"a", "bb", "ccc"} {
		hasRow := true
		c := s.NewCursor(&hasRow)
		c.SetRef(1, cqlrt.NewString([]byte(name)))
		c.SetRef(2, nil)
		writeInt32ViaBind(t, c, 0, int32(i))
		enc, err := blob.Encode(c)
		require.NoError(t, err)
		blobs = append(blobs, enc)
	}

	stream, err := blob.MakeStream(blobs)
	require.NoError(t, err)

	count, err := blob.StreamCount(stream)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	for i, name := range []string{"a", "bb", "ccc"} {
		raw, err := blob.StreamAt(stream, i)
		require.NoError(t, err)
		dstHasRow := false
		dst := s.NewCursor(&dstHasRow)
		require.NoError(t, blob.Decode(dst, raw))
		assert.Equal(t, name, string(cqlrt.StringBytes(dst.Ref(1))))
	}

	_, err = blob.StreamAt(stream, 99)
	assert.Error(t, err)
}

// writeInt32ViaBind sets column i of c to v using Multifetch against a
// single-value fake statement, exercising the same code path generated
// code would use rather than poking cursor internals directly.
func writeInt32ViaBind(t *testing.T, c *cursor.Cursor, col int, v int32) {
	t.Helper()
	stmt := &singleInt32Stmt{col: col, v: v, n: c.ColumnCount()}
	cursor.Multifetch(c, stmt, selectOnly(col, c.ColumnCount()))
}

func selectOnly(col, n int) []bool {
	sel := make([]bool, n)
	sel[col] = true
	return sel
}

type singleInt32Stmt struct {
	col int
	v   int32
	n   int
}

func (s *singleInt32Stmt) BindInt32(i int, v int32) error    { return nil }
func (s *singleInt32Stmt) BindInt64(i int, v int64) error    { return nil }
func (s *singleInt32Stmt) BindDouble(i int, v float64) error { return nil }
func (s *singleInt32Stmt) BindBool(i int, v bool) error      { return nil }
func (s *singleInt32Stmt) BindText(i int, v string) error    { return nil }
func (s *singleInt32Stmt) BindBlob(i int, v []byte) error    { return nil }
func (s *singleInt32Stmt) BindNull(i int) error { return nil }
func (s *singleInt32Stmt) Step(ctx context.Context) (cqlrt.EngineStatus, error) {
	return cqlrt.StatusRow, nil
}
func (s *singleInt32Stmt) ColumnCount() int           { return s.n }
func (s *singleInt32Stmt) ColumnIsNull(i int) bool    { return false }
func (s *singleInt32Stmt) ColumnInt32(i int) int32    { return s.v }
func (s *singleInt32Stmt) ColumnInt64(i int) int64    { return 0 }
func (s *singleInt32Stmt) ColumnDouble(i int) float64 { return 0 }
func (s *singleInt32Stmt) ColumnBool(i int) bool      { return false }
func (s *singleInt32Stmt) ColumnText(i int) string    { return "" }
func (s *singleInt32Stmt) ColumnBlob(i int) []byte    { return nil }
func (s *singleInt32Stmt) Reset() error               { return nil }
func (s *singleInt32Stmt) Finalize() error            { return nil }
func (s *singleInt32Stmt) TraceID() uuid.UUID         { return uuid.Nil }
