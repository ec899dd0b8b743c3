package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// pqUniqueViolation and friends are the Postgres SQLSTATE class 23 codes
// this classifier treats as constraint violations.
const (
	pqUniqueViolation     pq.ErrorCode = "23505"
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqNotNullViolation    pq.ErrorCode = "23502"
	pqCheckViolation      pq.ErrorCode = "23514"
)

// MySQL error numbers for the same four constraint classes.
const (
	myDupEntry        uint16 = 1062
	myNoReferencedRow uint16 = 1452
	myRowIsReferenced uint16 = 1451
	myBadNull         uint16 = 1048
	myCheckConstraint uint16 = 3819
)

// ConstraintKind classifies a constraint violation reported by the
// embedded engine, independent of which concrete engine raised it.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintNotNull
	ConstraintCheck
)

// ClassifyConstraint inspects err and reports which kind of constraint
// violation it represents, or ConstraintNone if it isn't one. It
// recognizes lib/pq's *pq.Error, the mysql driver's *mysql.MySQLError, and
// falls back to substring matching on SQLite's plain-string constraint
// messages (modernc.org/sqlite doesn't expose typed error codes), so
// callers never need an engine-specific switch of their own — mirroring
// the per-driver dispatch in the teacher's sqlgraph constraint classifier
// (spec §6: "the runtime does not care which engine").
func ClassifyConstraint(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return ConstraintUnique
		case pqForeignKeyViolation:
			return ConstraintForeignKey
		case pqNotNullViolation:
			return ConstraintNotNull
		case pqCheckViolation:
			return ConstraintCheck
		default:
			return ConstraintNone
		}
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myDupEntry:
			return ConstraintUnique
		case myNoReferencedRow, myRowIsReferenced:
			return ConstraintForeignKey
		case myBadNull:
			return ConstraintNotNull
		case myCheckConstraint:
			return ConstraintCheck
		default:
			return ConstraintNone
		}
	}

	return classifyMessage(err.Error())
}

// ConstraintError wraps an engine error that ClassifyConstraint recognized
// as a constraint violation, so callers can branch on Kind without
// re-parsing driver-specific codes or messages themselves.
type ConstraintError struct {
	Kind ConstraintKind
	Err  error
}

// Error returns the error string.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// String renders the constraint kind for error messages and logs.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintUnique:
		return "unique constraint violation"
	case ConstraintForeignKey:
		return "foreign key constraint violation"
	case ConstraintNotNull:
		return "not null constraint violation"
	case ConstraintCheck:
		return "check constraint violation"
	default:
		return "no constraint violation"
	}
}

// WrapConstraint classifies err and, if it represents a constraint
// violation, wraps it in a *ConstraintError so callers can type-assert
// or errors.As for Kind. err (or nil) is returned unchanged otherwise.
func WrapConstraint(err error) error {
	if kind := ClassifyConstraint(err); kind != ConstraintNone {
		return &ConstraintError{Kind: kind, Err: err}
	}
	return err
}

// classifyMessage is the fallback used for SQLite, whose Go drivers
// surface constraint failures as plain strings ("UNIQUE constraint
// failed: ...", "FOREIGN KEY constraint failed", "NOT NULL constraint
// failed: ...", "CHECK constraint failed: ...").
func classifyMessage(msg string) ConstraintKind {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "unique constraint"):
		return ConstraintUnique
	case strings.Contains(lower, "foreign key constraint"):
		return ConstraintForeignKey
	case strings.Contains(lower, "not null constraint"):
		return ConstraintNotNull
	case strings.Contains(lower, "check constraint"):
		return ConstraintCheck
	default:
		return ConstraintNone
	}
}
