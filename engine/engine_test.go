package engine_test

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/cqlrt/cqlrt"
	"github.com/cqlrt/cqlrt/engine"
	"github.com/cqlrt/cqlrt/engine/sqlite"
)

func TestPrepareBindsAndReturnsSteppableStmt(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare(`SELECT name FROM widgets WHERE id = \?`)
	mock.ExpectQuery(`SELECT name FROM widgets WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("gizmo"))

	e := sqlite.OpenDB(db)
	stmt, err := engine.Prepare(context.Background(), e, "SELECT name FROM widgets WHERE id = ?", int64(7))
	require.NoError(t, err)
	defer stmt.Finalize()

	status, err := stmt.Step(context.Background())
	require.NoError(t, err)
	require.Equal(t, cqlrt.StatusRow, status)
	require.Equal(t, "gizmo", stmt.ColumnText(0))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrepareFinalizesStmtOnBindError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare(`SELECT 1`).WillBeClosed()

	e := sqlite.OpenDB(db)
	_, err = engine.Prepare(context.Background(), e, "SELECT 1", struct{}{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrepareSurfacesPrepareError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPrepare(`SELECT 1`).WillReturnError(assertPrepareErr)

	e := sqlite.OpenDB(db)
	_, err = engine.Prepare(context.Background(), e, "SELECT 1")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

var assertPrepareErr = &prepareError{}

type prepareError struct{}

func (*prepareError) Error() string { return "prepare failure" }
