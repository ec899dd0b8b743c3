// Package sqlite adapts modernc.org/sqlite, via database/sql, to the
// engine.Engine/engine.Stmt ABI (spec §6). It is the one concrete engine
// this module ships; any other embedded engine satisfying the same two
// interfaces works identically with every other package in this module.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	modernc "modernc.org/sqlite"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/engine"
)

// Option configures Open, following the teacher's functional-options
// convention for dialect/sql.Open-style constructors.
type Option func(*Engine)

// WithTraceHook installs a per-engine trace hook distinct from the
// process-wide cqlrt.TraceHook, useful in tests that want to observe only
// this engine's activity.
func WithTraceHook(hook func(op string, err error)) Option {
	return func(e *Engine) { e.traceHook = hook }
}

// Engine is the modernc.org/sqlite-backed engine.Engine implementation.
type Engine struct {
	db        *sql.DB
	traceHook func(op string, err error)
}

// Open opens dsn (a modernc.org/sqlite data source name, e.g. "file::memory:")
// and returns a ready Engine.
func Open(dsn string, opts ...Option) (*Engine, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, cqlrt.NewEngineStatusError("open", cqlrt.StatusError, err)
	}
	// A single *sql.DB may otherwise hand out pooled connections
	// concurrently; spec §5 requires single-threaded-per-connection use.
	db.SetMaxOpenConns(1)
	e := &Engine{db: db}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// OpenDB wraps an already-open *sql.DB as an Engine, bypassing Open's own
// driver selection. Tests use this to substitute a github.com/DATA-DOG/
// go-sqlmock-backed *sql.DB for exact statement-sequence assertions
// without a real sqlite connection.
func OpenDB(db *sql.DB, opts ...Option) *Engine {
	e := &Engine{db: db}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) trace(op string, err error) {
	if e.traceHook != nil {
		e.traceHook(op, err)
	}
	cqlrt.Trace(op, err)
}

// Prepare implements engine.Engine.
func (e *Engine) Prepare(ctx context.Context, query string) (engine.Stmt, error) {
	stmt, err := e.db.PrepareContext(ctx, query)
	if err != nil {
		e.trace("sqlite.prepare", err)
		return nil, cqlrt.NewEngineStatusError("prepare", cqlrt.StatusError, err)
	}
	return &Stmt{stmt: stmt, query: query, traceID: uuid.New(), parent: e}, nil
}

// Exec implements engine.Engine.
func (e *Engine) Exec(ctx context.Context, query string, args ...engine.Value) error {
	driverArgs := make([]any, len(args))
	for i, a := range args {
		driverArgs[i] = a
	}
	if _, err := e.db.ExecContext(ctx, query, driverArgs...); err != nil {
		e.trace("sqlite.exec", err)
		return cqlrt.NewEngineStatusError("exec", cqlrt.StatusError, err)
	}
	return nil
}

// RegisterScalarFunc implements engine.Engine by registering a global
// modernc.org/sqlite scalar function. modernc.org/sqlite's registration is
// process-wide (applied to every connection opened after the call), unlike
// SQLite's native per-connection registration; the runtime only registers
// functions once at startup (package kv.Register), so this is harmless.
func (e *Engine) RegisterScalarFunc(name string, nArgs int, fn engine.ScalarFunc) error {
	err := modernc.RegisterScalarFunction(name, nArgs, func(_ *modernc.FunctionContext, args []driver.Value) (driver.Value, error) {
		in := make([]engine.Value, len(args))
		for i, a := range args {
			in[i] = engine.Value(a)
		}
		out, err := fn(in)
		if err != nil {
			return nil, err
		}
		return driver.Value(out), nil
	})
	if err != nil {
		return cqlrt.NewEngineStatusError(fmt.Sprintf("register %s", name), cqlrt.StatusError, err)
	}
	return nil
}

// Close implements engine.Engine.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Stmt implements engine.Stmt over a *sql.Stmt, holding the current row's
// scanned values so ColumnInt32/ColumnText/etc. can be read back
// synchronously after Step, matching the engine ABI's positional-column-
// read contract (spec §6) on top of database/sql's Scan-based model.
type Stmt struct {
	stmt    *sql.Stmt
	query   string
	traceID uuid.UUID
	parent  *Engine

	args []any
	rows *sql.Rows
	cols []any
	cur  int // not set anywhere; ColumnCount reports len(cols)
}

func (s *Stmt) ensureArgs(i int) {
	for len(s.args) <= i {
		s.args = append(s.args, nil)
	}
}

func (s *Stmt) BindInt32(i int, v int32) error  { s.ensureArgs(i); s.args[i] = int64(v); return nil }
func (s *Stmt) BindInt64(i int, v int64) error  { s.ensureArgs(i); s.args[i] = v; return nil }
func (s *Stmt) BindDouble(i int, v float64) error {
	s.ensureArgs(i)
	s.args[i] = v
	return nil
}
func (s *Stmt) BindBool(i int, v bool) error { s.ensureArgs(i); s.args[i] = v; return nil }
func (s *Stmt) BindText(i int, v string) error {
	s.ensureArgs(i)
	s.args[i] = v
	return nil
}
func (s *Stmt) BindBlob(i int, v []byte) error { s.ensureArgs(i); s.args[i] = v; return nil }
func (s *Stmt) BindNull(i int) error           { s.ensureArgs(i); s.args[i] = nil; return nil }

// Step implements engine.Stmt. The first call runs the query; subsequent
// calls advance the already-open *sql.Rows.
func (s *Stmt) Step(ctx context.Context) (engine.Status, error) {
	if s.rows == nil {
		rows, err := s.stmt.QueryContext(ctx, s.args...)
		if err != nil {
			s.parent.trace("sqlite.step "+s.traceID.String(), err)
			return cqlrt.StatusError, err
		}
		s.rows = rows
		cols, err := rows.Columns()
		if err != nil {
			return cqlrt.StatusError, err
		}
		s.cols = make([]any, len(cols))
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			s.parent.trace("sqlite.step "+s.traceID.String(), err)
			return cqlrt.StatusError, err
		}
		return cqlrt.StatusDone, nil
	}
	dests := make([]any, len(s.cols))
	for i := range dests {
		dests[i] = &s.cols[i]
	}
	if err := s.rows.Scan(dests...); err != nil {
		s.parent.trace("sqlite.step "+s.traceID.String(), err)
		return cqlrt.StatusError, err
	}
	return cqlrt.StatusRow, nil
}

func (s *Stmt) ColumnCount() int { return len(s.cols) }

func (s *Stmt) ColumnIsNull(i int) bool { return s.cols[i] == nil }

func (s *Stmt) ColumnInt32(i int) int32 {
	switch v := s.cols[i].(type) {
	case int64:
		return int32(v)
	case float64:
		return int32(v)
	default:
		return 0
	}
}

func (s *Stmt) ColumnInt64(i int) int64 {
	switch v := s.cols[i].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (s *Stmt) ColumnDouble(i int) float64 {
	switch v := s.cols[i].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func (s *Stmt) ColumnBool(i int) bool {
	switch v := s.cols[i].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	default:
		return false
	}
}

func (s *Stmt) ColumnText(i int) string {
	switch v := s.cols[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func (s *Stmt) ColumnBlob(i int) []byte {
	switch v := s.cols[i].(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}

// Reset implements engine.Stmt, discarding the open result set so the
// statement can be re-bound and re-stepped.
func (s *Stmt) Reset() error {
	if s.rows != nil {
		err := s.rows.Close()
		s.rows = nil
		s.cols = nil
		return err
	}
	return nil
}

// Finalize implements engine.Stmt.
func (s *Stmt) Finalize() error {
	_ = s.Reset()
	return s.stmt.Close()
}

// TraceID implements engine.Stmt.
func (s *Stmt) TraceID() uuid.UUID { return s.traceID }
