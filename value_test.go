package cqlrt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cqlrt/cqlrt"
)

func TestStringEqualNilSafety(t *testing.T) {
	a := cqlrt.NewString([]byte("x"))

	assert.True(t, cqlrt.StringEqual(nil, nil))
	assert.False(t, cqlrt.StringEqual(a, nil))
	assert.False(t, cqlrt.StringEqual(nil, a))
	assert.True(t, cqlrt.StringEqual(a, a))
}

func TestStringEqualCompare(t *testing.T) {
	a := cqlrt.NewString([]byte("abc"))
	b := cqlrt.NewString([]byte("abc"))
	c := cqlrt.NewString([]byte("abd"))

	assert.True(t, cqlrt.StringEqual(a, b))
	assert.False(t, cqlrt.StringEqual(a, c))

	assert.Equal(t, 0, cqlrt.StringCompare(a, b))
	assert.Equal(t, -1, cqlrt.StringCompare(a, c))
	assert.Equal(t, 1, cqlrt.StringCompare(c, a))
	assert.Equal(t, -1, cqlrt.StringCompare(nil, a))
	assert.Equal(t, 1, cqlrt.StringCompare(a, nil))
	assert.Equal(t, 0, cqlrt.StringCompare(nil, nil))
}

func TestStringBytesRoundtrip(t *testing.T) {
	r := cqlrt.NewString([]byte("hello"))
	assert.Equal(t, []byte("hello"), cqlrt.StringBytes(r))
	assert.Nil(t, cqlrt.StringBytes(nil))
}

func TestStringLike(t *testing.T) {
	s := cqlrt.NewString([]byte("hello world"))
	assert.True(t, cqlrt.StringLike(s, cqlrt.NewString([]byte("hello%"))))
	assert.True(t, cqlrt.StringLike(s, cqlrt.NewString([]byte("h_llo%"))))
	assert.False(t, cqlrt.StringLike(s, cqlrt.NewString([]byte("bye%"))))
	assert.False(t, cqlrt.StringLike(nil, cqlrt.NewString([]byte("%"))))
}

func TestLikeMatcherOverride(t *testing.T) {
	orig := cqlrt.LikeMatcher
	defer func() { cqlrt.LikeMatcher = orig }()

	var seenPattern, seenS string
	cqlrt.LikeMatcher = func(pattern, s string) bool {
		seenPattern, seenS = pattern, s
		return true
	}
	s := cqlrt.NewString([]byte("val"))
	p := cqlrt.NewString([]byte("pat"))
	assert.True(t, cqlrt.StringLike(s, p))
	assert.Equal(t, "pat", seenPattern)
	assert.Equal(t, "val", seenS)
}

func TestBlobEqualNilSafety(t *testing.T) {
	b := cqlrt.NewBlob([]byte{1, 2, 3})
	assert.True(t, cqlrt.BlobEqual(nil, nil))
	assert.False(t, cqlrt.BlobEqual(b, nil))
	assert.True(t, cqlrt.BlobEqual(b, b))
}

func TestBlobEqualCompare(t *testing.T) {
	a := cqlrt.NewBlob([]byte{1, 2, 3})
	b := cqlrt.NewBlob([]byte{1, 2, 3})
	c := cqlrt.NewBlob([]byte{1, 2, 4})
	d := cqlrt.NewBlob([]byte{1, 2})

	assert.True(t, cqlrt.BlobEqual(a, b))
	assert.False(t, cqlrt.BlobEqual(a, c))
	assert.False(t, cqlrt.BlobEqual(a, d))
}

func TestBlobBytesRoundtrip(t *testing.T) {
	r := cqlrt.NewBlob([]byte{9, 8, 7})
	assert.Equal(t, []byte{9, 8, 7}, cqlrt.BlobBytes(r))
}

func TestNewObjectFinalizeOnRelease(t *testing.T) {
	var got any
	r := cqlrt.NewObject(42, func(data any) { got = data })
	assert.Equal(t, 42, cqlrt.ObjectData(r))
	cqlrt.Release(r)
	assert.Equal(t, 42, got)
}

func TestNewObjectNilFinalizer(t *testing.T) {
	r := cqlrt.NewObject("x", nil)
	assert.NotPanics(t, func() { cqlrt.Release(r) })
}

type fakeStmt struct {
	finalized bool
	err       error
}

func (f *fakeStmt) Finalize() error {
	f.finalized = true
	return f.err
}

func TestNewBoxedStatementFinalizes(t *testing.T) {
	stmt := &fakeStmt{}
	r := cqlrt.NewBoxedStatement(stmt)
	cqlrt.Release(r)
	assert.True(t, stmt.finalized)
}

func TestNewBoxedStatementTracesFinalizeError(t *testing.T) {
	var gotErr error
	cqlrt.SetTraceHook(func(op string, err error) { gotErr = err })
	defer cqlrt.SetTraceHook(nil)

	stmt := &fakeStmt{err: assertErr}
	r := cqlrt.NewBoxedStatement(stmt)
	cqlrt.Release(r)
	assert.Equal(t, assertErr, gotErr)
}

var assertErr = &cqlrt.DecodeError{Reason: "boom"}
