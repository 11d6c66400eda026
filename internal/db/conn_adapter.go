package db

import (
	"context"
	"errors"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// ConnAdapter adapts *pgx.Conn to dbtool.DBConnection.
//
// Thread-Safety: NOT safe for concurrent use (pgx.Conn is not).
type ConnAdapter struct {
	conn    *pgx.Conn
	release io.Closer
}

// NewConnAdapter wraps conn. release, if non-nil, is closed after the connection
// (e.g. the Cloud SQL dialer that produced it).
func NewConnAdapter(conn *pgx.Conn, release io.Closer) *ConnAdapter {
	return &ConnAdapter{conn: conn, release: release}
}

func (a *ConnAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.conn.Exec(ctx, sql, args...)
}

func (a *ConnAdapter) QueryRow(ctx context.Context, sql string, args ...any) dbtool.Row {
	return a.conn.QueryRow(ctx, sql, args...)
}

func (a *ConnAdapter) BeginReadCommitted(ctx context.Context) (dbtool.Transaction, error) {
	return a.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
}

func (a *ConnAdapter) Close(ctx context.Context) error {
	err := a.conn.Close(ctx)
	if a.release != nil {
		err = errors.Join(err, a.release.Close())
	}
	return err
}

// Open connects with the Connector matching config.AuthMethod and returns the
// connection ready for a scope.
func Open(ctx context.Context, config *dbtool.ConnectionConfig, reporter dbtool.Reporter) (dbtool.DBConnection, error) {
	connector, err := NewConnector(config, reporter)
	if err != nil {
		return nil, err
	}

	conn, err := connector.Connect(ctx)
	if err != nil {
		if closer, ok := connector.(io.Closer); ok {
			closer.Close()
		}
		return nil, err
	}

	closer, _ := connector.(io.Closer)
	return NewConnAdapter(conn, closer), nil
}

// NewOpener returns an Open bound to reporter, for use as a connection opener.
func NewOpener(reporter dbtool.Reporter) func(ctx context.Context, config *dbtool.ConnectionConfig) (dbtool.DBConnection, error) {
	return func(ctx context.Context, config *dbtool.ConnectionConfig) (dbtool.DBConnection, error) {
		return Open(ctx, config, reporter)
	}
}

var (
	_ dbtool.DBConnection = (*ConnAdapter)(nil)
	_ dbtool.Transaction  = (pgx.Tx)(nil)
)
