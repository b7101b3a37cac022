package tsql

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queryfront/tsql/dialect"
	"github.com/queryfront/tsql/rql"
)

var errBoom = errors.New("boom")

func mockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return OpenDB(db), mock
}

func TestDriverDialect(t *testing.T) {
	drv, _ := mockDriver(t)
	assert.Equal(t, dialect.SQLServer, drv.Dialect())
}

func TestDriverQuery(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	var rows Rows
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, &rows))
	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 1, n)
	require.NoError(t, rows.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverExec(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))

	var res sql.Result
	require.NoError(t, drv.Exec(context.Background(), "UPDATE t SET x = 1", []any{}, &res))
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverInvalidArgs(t *testing.T) {
	drv, _ := mockDriver(t)
	err := drv.Exec(context.Background(), "UPDATE t SET x = 1", "not a slice", nil)
	assert.Error(t, err)
	err = drv.Query(context.Background(), "SELECT 1", []any{}, "not rows")
	assert.Error(t, err)
}

func TestDriverTx(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "DELETE FROM t", []any{}, nil))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstrumentedDriver(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec("UPDATE").WillReturnError(errBoom)

	var buf bytes.Buffer
	ins := Instrument(drv,
		WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
		SlowAfter(-time.Millisecond),
	)
	var rows Rows
	require.NoError(t, ins.Query(context.Background(), "SELECT 1", []any{}, &rows))
	require.NoError(t, rows.Close())
	require.Error(t, ins.Exec(context.Background(), "UPDATE t SET x = 1", []any{}, nil))

	snap := ins.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.Queries)
	assert.Equal(t, int64(1), snap.Execs)
	assert.Equal(t, int64(1), snap.Slow)
	assert.Equal(t, int64(1), snap.Failures)
	assert.Contains(t, buf.String(), "slow statement")
	assert.Contains(t, buf.String(), "statement failed")

	ins.Metrics().Reset()
	assert.Equal(t, int64(0), ins.Metrics().Snapshot().Queries)
}

func TestInstrumentedTx(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ins := Instrument(drv, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	tx, err := ins.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "DELETE FROM t", []any{}, nil))
	require.NoError(t, tx.Commit())
	assert.Equal(t, int64(1), ins.Metrics().Snapshot().Execs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementExecution(t *testing.T) {
	drv, mock := mockDriver(t)
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"AuthorId", "FirstName", "LastName", "Website"}).
			AddRow(7, "Mark", "Twain", nil))

	c := New(testRegistry(t))
	stmt, err := c.Collection(Author{}, rql.Noop(), 100, false)
	require.NoError(t, err)

	var rows Rows
	require.NoError(t, QueryStatement(context.Background(), drv, stmt, &rows))
	require.True(t, rows.Next())
	require.NoError(t, rows.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementArgs(t *testing.T) {
	c := New(testRegistry(t))
	stmt, err := c.Collection(Author{}, rql.EQ("LastName", "Twain"), 100, false)
	require.NoError(t, err)
	args := stmt.Args()
	require.Len(t, args, 1)
	named, ok := args[0].(sql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "P0", named.Name)
	assert.Equal(t, "Twain", named.Value)
}
