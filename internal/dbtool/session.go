package dbtool

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgdbtool/internal/db/manager"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Session is the open connection of one WithConnection scope.
// It is only valid inside the callback.
//
// Thread-Safety: NOT safe for concurrent use.
type Session struct {
	tool     *Tool
	conn     dbtool.DBConnection
	tx       dbtool.Transaction
	reporter dbtool.Reporter

	autocommit bool
	closed     bool
}

// Tool returns the tool that opened the session.
func (s *Session) Tool() *Tool { return s.tool }

// Autocommit reports the mode set by the most recent Exec.
func (s *Session) Autocommit() bool { return s.autocommit }

// Exec runs sql and reports it as a success or error.
//
// With isolate, the statement runs in autocommit mode, which CREATE DATABASE
// and DROP DATABASE require. Otherwise it runs in a READ COMMITTED
// transaction that is started on first use and ended by the scope. The mode
// stays set until the next call. Switching to autocommit while that
// transaction is open fails with dbtool.ErrTransactionInProgress.
//
// Errors from the server are returned unmodified.
func (s *Session) Exec(ctx context.Context, sql string, isolate bool) error {
	if s.closed {
		return dbtool.ErrNoConnection
	}

	var err error
	if isolate {
		if s.tx != nil {
			err = fmt.Errorf("cannot run %q in autocommit mode: %w", sql, dbtool.ErrTransactionInProgress)
			s.reporter.Error("%s", sql)
			return err
		}
		s.autocommit = true
		_, err = s.conn.Exec(ctx, sql)
	} else {
		s.autocommit = false
		if s.tx == nil {
			if s.tx, err = s.conn.BeginReadCommitted(ctx); err != nil {
				s.tx = nil
				s.reporter.Error("%s", sql)
				return err
			}
		}
		_, err = s.tx.Exec(ctx, sql)
	}

	if err != nil {
		s.reporter.Error("%s", sql)
		return err
	}
	s.reporter.Success("%s", sql)
	return nil
}

// Exists reports whether a database called name exists on the server.
func (s *Session) Exists(ctx context.Context, name string) (bool, error) {
	if s.closed {
		return false, dbtool.ErrNoConnection
	}
	return manager.Exists(ctx, s.conn, name)
}
