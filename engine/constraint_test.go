package engine_test

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/engine"
)

func TestClassifyConstraintPostgres(t *testing.T) {
	cases := []struct {
		code pq.ErrorCode
		want engine.ConstraintKind
	}{
		{"23505", engine.ConstraintUnique},
		{"23503", engine.ConstraintForeignKey},
		{"23502", engine.ConstraintNotNull},
		{"23514", engine.ConstraintCheck},
		{"42601", engine.ConstraintNone},
	}
	for _, c := range cases {
		err := &pq.Error{Code: c.code}
		assert.Equal(t, c.want, engine.ClassifyConstraint(err))
	}
}

func TestClassifyConstraintMySQL(t *testing.T) {
	cases := []struct {
		number uint16
		want   engine.ConstraintKind
	}{
		{1062, engine.ConstraintUnique},
		{1452, engine.ConstraintForeignKey},
		{1451, engine.ConstraintForeignKey},
		{1048, engine.ConstraintNotNull},
		{3819, engine.ConstraintCheck},
		{1146, engine.ConstraintNone},
	}
	for _, c := range cases {
		err := &mysql.MySQLError{Number: c.number}
		assert.Equal(t, c.want, engine.ClassifyConstraint(err))
	}
}

func TestClassifyConstraintSQLiteMessage(t *testing.T) {
	cases := []struct {
		msg  string
		want engine.ConstraintKind
	}{
		{"UNIQUE constraint failed: t.id", engine.ConstraintUnique},
		{"FOREIGN KEY constraint failed", engine.ConstraintForeignKey},
		{"NOT NULL constraint failed: t.name", engine.ConstraintNotNull},
		{"CHECK constraint failed: t", engine.ConstraintCheck},
		{"no such table: t", engine.ConstraintNone},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, engine.ClassifyConstraint(errors.New(c.msg)))
	}
}

func TestClassifyConstraintNilIsNone(t *testing.T) {
	assert.Equal(t, engine.ConstraintNone, engine.ClassifyConstraint(nil))
}

func TestWrapConstraintUnwrapsThroughEngineStatusError(t *testing.T) {
	wrapped := cqlrt.NewEngineStatusError("exec", cqlrt.StatusError, &pq.Error{Code: "23505"})

	err := engine.WrapConstraint(wrapped)

	var ce *engine.ConstraintError
	if assert.True(t, errors.As(err, &ce)) {
		assert.Equal(t, engine.ConstraintUnique, ce.Kind)
	}
	assert.True(t, errors.Is(err, wrapped))
}

func TestWrapConstraintPassesThroughNonConstraintErrors(t *testing.T) {
	plain := errors.New("no such table: t")
	assert.Same(t, plain, engine.WrapConstraint(plain))
}
