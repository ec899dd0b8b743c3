// Package schema implements the recreate-group algorithm of spec §4.L:
// given concatenated CREATE TABLE / CREATE INDEX / DROP TABLE DDL source
// strings, drop and recreate a group of tables (and their indices) in
// dependency-safe order.
package schema

import (
	"context"
	"fmt"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/engine"
)

// RecreateGroup holds the pre-parsed statement lists for one group,
// produced once by NewRecreateGroup and replayed by Run against an
// engine.Engine connection.
type RecreateGroup struct {
	tables  []string
	indices []string
	deletes []string

	traceHook func(stmt string)
	dryRun    bool
}

// RecreateOption configures a RecreateGroup at construction.
type RecreateOption func(*RecreateGroup)

// WithTraceHook installs a callback invoked with each statement
// immediately before it is executed (or, under WithDryRun, instead of
// executing it).
func WithTraceHook(hook func(stmt string)) RecreateOption {
	return func(g *RecreateGroup) { g.traceHook = hook }
}

// WithDryRun makes Run log the statement sequence via the trace hook
// without executing anything against the engine — useful for asserting
// the exact statement order in tests built on go-sqlmock without needing
// a live connection.
func WithDryRun(dryRun bool) RecreateOption {
	return func(g *RecreateGroup) { g.dryRun = dryRun }
}

// NewRecreateGroup parses tables, indices, and deletes once, asserting
// that no virtual-table statement appears among tables (spec §4.L: "no
// virtual tables appear in recreate groups — this is asserted").
func NewRecreateGroup(tables, indices, deletes string, opts ...RecreateOption) (*RecreateGroup, error) {
	tableStmts := splitStatements(tables, "CREATE TABLE")
	if len(splitStatements(tables, "CREATE VIRTUAL TABLE")) > 0 {
		return nil, fmt.Errorf("schema: recreate group must not contain virtual tables")
	}
	g := &RecreateGroup{
		tables:  tableStmts,
		indices: splitStatements(indices, "CREATE INDEX"),
		deletes: splitStatements(deletes, "DROP TABLE"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Run executes the recreate algorithm against e: deletes in reverse
// order, then a reverse-order DROP TABLE IF EXISTS per table, then a
// forward-order CREATE TABLE followed by its matching CREATE INDEX
// statements. Any engine error short-circuits and is returned; the
// "result" out-parameter spec §4.L describes is always false
// (recreated, not incrementally rebuilt), so Run has no result return —
// callers that need the flag can treat a nil error as "recreated".
func (g *RecreateGroup) Run(ctx context.Context, e engine.Engine) error {
	for i := len(g.deletes) - 1; i >= 0; i-- {
		if err := g.exec(ctx, e, g.deletes[i]); err != nil {
			return err
		}
	}

	for i := len(g.tables) - 1; i >= 0; i-- {
		name := tableName(g.tables[i])
		if err := g.exec(ctx, e, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
			return err
		}
	}

	for _, create := range g.tables {
		if err := g.exec(ctx, e, create); err != nil {
			return err
		}
		name := tableName(create)
		for _, idx := range g.indices {
			if sameTable(indexTarget(idx), name) {
				if err := g.exec(ctx, e, idx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (g *RecreateGroup) exec(ctx context.Context, e engine.Engine, stmt string) error {
	if g.traceHook != nil {
		g.traceHook(stmt)
	}
	if g.dryRun {
		return nil
	}
	if err := e.Exec(ctx, stmt); err != nil {
		err = engine.WrapConstraint(err)
		cqlrt.Trace("schema.recreate_group", err)
		return err
	}
	return nil
}
