// Package dialect defines the execution boundary between the statement
// compilers and the database driver that runs their output.
package dialect

import "context"

// SQLServer is the only dialect this module targets.
const SQLServer = "sqlserver"

// ExecQuerier wraps the Exec and Query methods.
//
// Exec executes a statement that returns no rows; v is either nil or a
// *sql.Result. Query executes a statement that returns rows; v is a
// *tsql.Rows.
type ExecQuerier interface {
	Exec(ctx context.Context, query string, args, v any) error
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface the execution layer implements.
type Driver interface {
	ExecQuerier
	// Tx starts a transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx is a transactional Driver connection.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
