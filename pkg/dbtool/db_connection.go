package dbtool

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// DBConnection abstracts the single live connection held by a connection scope.
// It decouples the tool from pgx-specific types so scopes can be exercised
// against test doubles.
//
// Thread-Safety: NOT safe for concurrent use, like the underlying *pgx.Conn.
type DBConnection interface {
	// Exec executes a statement outside any transaction (autocommit).
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Row's Scan method is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row

	// BeginReadCommitted starts a READ COMMITTED transaction.
	BeginReadCommitted(ctx context.Context) (Transaction, error)

	// Close terminates the connection.
	Close(ctx context.Context) error
}

// Transaction is an open transaction on a DBConnection.
type Transaction interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Row represents a single row returned by QueryRow.
// This interface decouples from pgx.Row.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}
