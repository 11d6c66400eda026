package dbtool

import (
	"context"
	"errors"
	"fmt"

	"github.com/vvka-141/pgdbtool/internal/inventory"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// Tool is bound to one target database and the inventory snapshot taken
// when it was created. Obtain it from a Registry.
type Tool struct {
	name      string
	params    *dbtool.ConnectionConfig
	inventory inventory.Inventory
	open      Opener
	reporter  dbtool.Reporter
}

// Name returns the database the tool connects to.
func (t *Tool) Name() string { return t.name }

// Params returns a copy of the connection parameters.
func (t *Tool) Params() *dbtool.ConnectionConfig { return t.params.Clone() }

// Inventory returns the databases the tool manages.
func (t *Tool) Inventory() inventory.Inventory { return t.inventory }

// WithConnection opens a connection, runs fn with a Session on it and then
// finishes the scope: commit when fn returns nil, rollback when it returns
// an error or panics. The connection is closed on every path and a panic is
// re-raised after cleanup.
func (t *Tool) WithConnection(ctx context.Context, fn func(s *Session) error) (err error) {
	conn, err := t.open(ctx, t.params.Clone())
	if err != nil {
		return fmt.Errorf("failed to connect to database %q: %w", t.name, err)
	}

	s := &Session{tool: t, conn: conn, reporter: t.reporter}

	defer func() {
		if p := recover(); p != nil {
			_ = s.finish(ctx, fmt.Errorf("panic: %v", p))
			panic(p)
		}
	}()

	return s.finish(ctx, fn(s))
}

// finish ends the pending transaction, if any, and closes the connection.
// Cleanup runs even when ctx is already done.
func (s *Session) finish(ctx context.Context, bodyErr error) error {
	cleanupCtx := context.WithoutCancel(ctx)

	var endErr error
	if s.tx != nil {
		if bodyErr != nil {
			endErr = s.tx.Rollback(cleanupCtx)
			if endErr != nil {
				endErr = fmt.Errorf("rollback failed: %w", endErr)
			}
		} else if endErr = s.tx.Commit(cleanupCtx); endErr != nil {
			endErr = fmt.Errorf("commit failed: %w", endErr)
		}
		s.tx = nil
	}

	closeErr := s.conn.Close(cleanupCtx)
	if closeErr != nil {
		closeErr = fmt.Errorf("failed to close connection: %w", closeErr)
	}
	s.closed = true

	return errors.Join(bodyErr, endErr, closeErr)
}
