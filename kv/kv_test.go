package kv_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/engine"
	"github.com/cqlrt/cqlrt/kv"
)

func TestCreateGetKeyRoundTrip(t *testing.T) {
	cols := []kv.Column{
		{Type: cqlrt.CoreInt32, I64: 42},
		{Type: cqlrt.CoreString, S: "alice"},
		{Type: cqlrt.CoreBlob, B: []byte{1, 2, 3}},
	}
	blob, err := kv.CreateKey(7, cols)
	require.NoError(t, err)

	c0, ok := kv.GetKey(blob, 0)
	require.True(t, ok)
	assert.Equal(t, int64(42), c0.I64)

	c1, ok := kv.GetKey(blob, 1)
	require.True(t, ok)
	assert.Equal(t, "alice", c1.S)

	c2, ok := kv.GetKey(blob, 2)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, c2.B)

	_, ok = kv.GetKey(blob, 3)
	assert.False(t, ok)
}

func TestGetKeyBadMagic(t *testing.T) {
	_, ok := kv.GetKey([]byte("not a key blob at all, too short"), 0)
	assert.False(t, ok)
}

func TestUpdateKeyIsCanonicalRegardlessOfArgOrder(t *testing.T) {
	cols := []kv.Column{
		{Type: cqlrt.CoreString, S: "a"},
		{Type: cqlrt.CoreString, S: "b"},
		{Type: cqlrt.CoreInt32, I64: 1},
	}
	blob, err := kv.CreateKey(1, cols)
	require.NoError(t, err)

	updated1, err := kv.UpdateKey(blob, map[int]kv.Column{
		0: {Type: cqlrt.CoreString, S: "x"},
		1: {Type: cqlrt.CoreString, S: "y"},
	})
	require.NoError(t, err)

	// Same logical update, with the map built in the other order — the
	// output must still be byte-identical, since variable-length items
	// are always written in column order, not argument order.
	updated2, err := kv.UpdateKey(blob, map[int]kv.Column{
		1: {Type: cqlrt.CoreString, S: "y"},
		0: {Type: cqlrt.CoreString, S: "x"},
	})
	require.NoError(t, err)

	assert.Equal(t, updated1, updated2)

	c0, _ := kv.GetKey(updated1, 0)
	c1, _ := kv.GetKey(updated1, 1)
	c2, _ := kv.GetKey(updated1, 2)
	assert.Equal(t, "x", c0.S)
	assert.Equal(t, "y", c1.S)
	assert.Equal(t, int64(1), c2.I64)
}

func TestUpdateKeyOutOfRangeIndex(t *testing.T) {
	blob, err := kv.CreateKey(1, []kv.Column{{Type: cqlrt.CoreInt32, I64: 1}})
	require.NoError(t, err)
	_, err = kv.UpdateKey(blob, map[int]kv.Column{5: {Type: cqlrt.CoreInt32, I64: 2}})
	assert.Error(t, err)
}

func TestCreateGetValRoundTrip(t *testing.T) {
	blob, err := kv.CreateVal(9, []kv.Field{
		{ID: 100, Col: kv.Column{Type: cqlrt.CoreInt64, I64: 555}},
		{ID: 5, Col: kv.Column{Type: cqlrt.CoreString, S: "hi"}},
	})
	require.NoError(t, err)

	v, ok := kv.GetVal(blob, 100)
	require.True(t, ok)
	assert.Equal(t, int64(555), v.I64)

	v2, ok := kv.GetVal(blob, 5)
	require.True(t, ok)
	assert.Equal(t, "hi", v2.S)

	_, ok = kv.GetVal(blob, 404)
	assert.False(t, ok)
}

func TestCreateValDuplicateFieldIsError(t *testing.T) {
	_, err := kv.CreateVal(1, []kv.Field{
		{ID: 1, Col: kv.Column{Type: cqlrt.CoreInt32, I64: 1}},
		{ID: 1, Col: kv.Column{Type: cqlrt.CoreInt32, I64: 2}},
	})
	assert.Error(t, err)
}

func TestUpdateValSetAndDelete(t *testing.T) {
	blob, err := kv.CreateVal(1, []kv.Field{
		{ID: 1, Col: kv.Column{Type: cqlrt.CoreInt32, I64: 10}},
		{ID: 2, Col: kv.Column{Type: cqlrt.CoreString, S: "keep"}},
	})
	require.NoError(t, err)

	updated, err := kv.UpdateVal(blob,
		[]kv.Field{{ID: 1, Col: kv.Column{Type: cqlrt.CoreInt32, I64: 20}}},
		[]int64{2},
	)
	require.NoError(t, err)

	v, ok := kv.GetVal(updated, 1)
	require.True(t, ok)
	assert.Equal(t, int64(20), v.I64)

	_, ok = kv.GetVal(updated, 2)
	assert.False(t, ok)
}

func TestUpdateValConflictingOpsIsError(t *testing.T) {
	blob, err := kv.CreateVal(1, nil)
	require.NoError(t, err)
	_, err = kv.UpdateVal(blob,
		[]kv.Field{{ID: 3, Col: kv.Column{Type: cqlrt.CoreInt32, I64: 1}}},
		[]int64{3},
	)
	assert.Error(t, err)
}

// registerEngine is a minimal engine.Engine used solely to capture the
// functions kv.Register installs, and to exercise them directly.
type registerEngine struct {
	funcs map[string]engine.ScalarFunc
}

func newRegisterEngine() *registerEngine {
	return &registerEngine{funcs: map[string]engine.ScalarFunc{}}
}

func (e *registerEngine) Prepare(ctx context.Context, sql string) (engine.Stmt, error) {
	return nil, nil
}
func (e *registerEngine) Exec(ctx context.Context, sql string, args ...engine.Value) error {
	return nil
}
func (e *registerEngine) RegisterScalarFunc(name string, nArgs int, fn engine.ScalarFunc) error {
	e.funcs[name] = fn
	return nil
}
func (e *registerEngine) Close() error { return nil }

func TestRegisterInstallsAllEightFunctions(t *testing.T) {
	e := newRegisterEngine()
	require.NoError(t, kv.Register(e))
	names := []string{
		"bcreatekey", "bgetkey", "bgetkey_type", "bupdatekey",
		"bcreateval", "bgetval", "bgetval_type", "bupdateval",
	}
	for _, name := range names {
		assert.Contains(t, e.funcs, name)
	}
}

func TestRegisteredBcreatekeyAndBgetkeyRoundTrip(t *testing.T) {
	e := newRegisterEngine()
	require.NoError(t, kv.Register(e))

	create := e.funcs["bcreatekey"]
	out, err := create([]engine.Value{
		int64(1),
		int64(42), int64(cqlrt.CoreInt32),
		"alice", int64(cqlrt.CoreString),
	})
	require.NoError(t, err)
	blob, ok := out.([]byte)
	require.True(t, ok)

	get := e.funcs["bgetkey"]
	v, err := get([]engine.Value{blob, int64(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v2, err := get([]engine.Value{blob, int64(1)})
	require.NoError(t, err)
	assert.Equal(t, "alice", v2)

	getType := e.funcs["bgetkey_type"]
	vt, err := getType([]engine.Value{blob, int64(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(cqlrt.CoreInt32), vt)

	// Out-of-range index yields NULL, not an error.
	v3, err := get([]engine.Value{blob, int64(99)})
	require.NoError(t, err)
	assert.Nil(t, v3)
}

func TestRegisteredBcreatekeyMalformedArgsReturnsNull(t *testing.T) {
	e := newRegisterEngine()
	require.NoError(t, kv.Register(e))
	create := e.funcs["bcreatekey"]
	out, err := create([]engine.Value{int64(1), int64(1)}) // odd trailing args
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRegisteredBupdatekeyInfersStoredType(t *testing.T) {
	e := newRegisterEngine()
	require.NoError(t, kv.Register(e))

	create := e.funcs["bcreatekey"]
	out, err := create([]engine.Value{
		int64(1),
		int64(42), int64(cqlrt.CoreInt32),
		"alice", int64(cqlrt.CoreString),
	})
	require.NoError(t, err)
	blob := out.([]byte)

	update := e.funcs["bupdatekey"]
	out2, err := update([]engine.Value{blob, int64(0), int64(99)})
	require.NoError(t, err)
	blob2 := out2.([]byte)

	get := e.funcs["bgetkey"]
	v, err := get([]engine.Value{blob2, int64(0)})
	require.NoError(t, err)
	assert.Equal(t, int64(99), v)
}

func TestRegisteredBupdatevalSetAndDelete(t *testing.T) {
	e := newRegisterEngine()
	require.NoError(t, kv.Register(e))

	createVal := e.funcs["bcreateval"]
	out, err := createVal([]engine.Value{
		int64(1),
		int64(1), int64(10), int64(cqlrt.CoreInt32),
		int64(2), "keep", int64(cqlrt.CoreString),
	})
	require.NoError(t, err)
	blob := out.([]byte)

	update := e.funcs["bupdateval"]
	out2, err := update([]engine.Value{
		blob,
		int64(1), int64(20), int64(cqlrt.CoreInt32), // overwrite field 1
		int64(2), nil, int64(cqlrt.CoreString), // NULL value deletes field 2
	})
	require.NoError(t, err)
	blob2 := out2.([]byte)

	getVal := e.funcs["bgetval"]
	v, err := getVal([]engine.Value{blob2, int64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)

	v2, err := getVal([]engine.Value{blob2, int64(2)})
	require.NoError(t, err)
	assert.Nil(t, v2)
}
