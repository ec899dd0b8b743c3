// Package engine defines the narrow ABI the runtime needs from an embedded
// relational engine (spec §6): prepared statements, positional binding,
// row stepping with OK/ROW/DONE status codes, column reading, and scalar
// function registration. Concrete engines (package engine/sqlite) implement
// these two interfaces; everything in cqlrt, cursor, rowset, blob, kv and
// schema depends only on them, never on a specific driver.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/cqlrt/cqlrt"
)

// Status is an alias so callers compare against cqlrt.StatusOK etc.
// without importing both packages for the same concept.
type Status = cqlrt.EngineStatus

// Value is a column or bound-parameter value in the engine's wire
// representation: one of nil, int64, float64, bool, []byte, or string,
// matching database/sql/driver.Value.
type Value any

// Engine is a single open connection to the embedded relational engine.
// Per spec §5 it is used by one goroutine at a time; the runtime never
// synchronizes access to it.
type Engine interface {
	// Prepare compiles sql into a reusable Stmt.
	Prepare(ctx context.Context, sql string) (Stmt, error)

	// Exec runs a statement that produces no rows, such as DDL or an
	// INSERT with no RETURNING clause. The free function Exec below does
	// not call this; it goes through Prepare and Step instead.
	Exec(ctx context.Context, sql string, args ...Value) error

	// RegisterScalarFunc installs a scalar SQL function under name,
	// usable from any statement prepared afterward. nArgs is the fixed
	// arity; -1 means variadic. Used by package kv to install bcreatekey
	// and friends (§4.G, §6).
	RegisterScalarFunc(name string, nArgs int, fn ScalarFunc) error

	// Close releases the connection.
	Close() error
}

// ScalarFunc implements one invocation of a registered scalar SQL
// function. Returning an error surfaces it to the engine as a SQL-level
// function error; package kv's functions never do this — per §4.G they
// signal validation failure by returning a nil Value instead.
type ScalarFunc func(args []Value) (Value, error)

// Stmt is one prepared statement, bound and stepped per spec §6.
// Column/Bind indices are zero-based positional.
type Stmt interface {
	BindInt32(i int, v int32) error
	BindInt64(i int, v int64) error
	BindDouble(i int, v float64) error
	BindBool(i int, v bool) error
	BindText(i int, v string) error
	BindBlob(i int, v []byte) error
	BindNull(i int) error

	// Step advances to the next row. It returns StatusRow when a row is
	// available, StatusDone when the statement is exhausted, and
	// StatusError (with a non-nil error) otherwise.
	Step(ctx context.Context) (Status, error)

	ColumnCount() int
	ColumnIsNull(i int) bool
	ColumnInt32(i int) int32
	ColumnInt64(i int) int64
	ColumnDouble(i int) float64
	ColumnBool(i int) bool
	ColumnText(i int) string
	ColumnBlob(i int) []byte

	// Reset rewinds the statement so it can be re-bound and re-stepped
	// without re-preparing.
	Reset() error

	// Finalize releases the statement's engine-side resources. Safe to
	// call more than once.
	Finalize() error

	// TraceID identifies this statement in TraceHook messages, per the
	// ambient-stack diagnostics convention (SPEC_FULL §0).
	TraceID() uuid.UUID
}

// Exec prepares sql, binds args positionally, steps once (discarding any
// row), and finalizes — the cql_exec-style convenience wrapper from §9's
// supplemented features. A ROW or DONE step counts as success and returns
// nil; an ERROR step is passed through cqlrt.NormalizeThrow so callers get
// a single error channel.
func Exec(ctx context.Context, e Engine, sql string, args ...Value) error {
	stmt, err := e.Prepare(ctx, sql)
	if err != nil {
		return cqlrt.NewEngineStatusError("prepare", cqlrt.StatusError, err)
	}
	defer func() { _ = stmt.Finalize() }()

	if err := bindAll(stmt, args); err != nil {
		return err
	}
	status, stepErr := stmt.Step(ctx)
	if status == cqlrt.StatusError {
		err := cqlrt.NormalizeThrow("exec", status, stepErr)
		cqlrt.Trace("engine.Exec", err)
		return err
	}
	return nil
}

// Prepare compiles sql and binds args, returning the ready-to-step
// statement — the cql_prepare-style wrapper from §9's supplemented
// features.
func Prepare(ctx context.Context, e Engine, sql string, args ...Value) (Stmt, error) {
	stmt, err := e.Prepare(ctx, sql)
	if err != nil {
		return nil, cqlrt.NewEngineStatusError("prepare", cqlrt.StatusError, err)
	}
	if err := bindAll(stmt, args); err != nil {
		_ = stmt.Finalize()
		return nil, err
	}
	return stmt, nil
}

func bindAll(stmt Stmt, args []Value) error {
	for i, a := range args {
		var err error
		switch v := a.(type) {
		case nil:
			err = stmt.BindNull(i)
		case int32:
			err = stmt.BindInt32(i, v)
		case int64:
			err = stmt.BindInt64(i, v)
		case int:
			err = stmt.BindInt64(i, int64(v))
		case float64:
			err = stmt.BindDouble(i, v)
		case bool:
			err = stmt.BindBool(i, v)
		case string:
			err = stmt.BindText(i, v)
		case []byte:
			err = stmt.BindBlob(i, v)
		default:
			err = cqlrt.NewEngineStatusError("bind", cqlrt.StatusError, nil)
		}
		if err != nil {
			return cqlrt.NewEngineStatusError("bind", cqlrt.StatusError, err)
		}
	}
	return nil
}
