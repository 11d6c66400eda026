package dbtool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// fakeConn records every call in events, e.g. "exec:CREATE DATABASE a;",
// "begin", "tx:UPDATE t SET x = 1", "commit", "rollback", "close".
type fakeConn struct {
	events     []string
	failOn     map[string]error
	beginErr   error
	commitErr  error
	closeErr   error
	existing   map[string]bool
	terminated map[string]int64
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		failOn:     map[string]error{},
		existing:   map[string]bool{},
		terminated: map[string]int64{},
	}
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.events = append(c.events, "exec:"+sql)
	if err := c.failOn[sql]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) dbtool.Row {
	name, _ := args[0].(string)
	switch {
	case strings.Contains(sql, "pg_terminate_backend"):
		c.events = append(c.events, "terminate:"+name)
		return fakeRow{value: c.terminated[name]}
	case strings.Contains(sql, "pg_database"):
		return fakeRow{value: c.existing[name]}
	}
	return fakeRow{err: fmt.Errorf("unexpected query %q", sql)}
}

func (c *fakeConn) BeginReadCommitted(context.Context) (dbtool.Transaction, error) {
	c.events = append(c.events, "begin")
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	return &fakeTx{conn: c}, nil
}

func (c *fakeConn) Close(context.Context) error {
	c.events = append(c.events, "close")
	return c.closeErr
}

type fakeTx struct {
	conn *fakeConn
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.conn.events = append(t.conn.events, "tx:"+sql)
	if err := t.conn.failOn[sql]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.conn.events = append(t.conn.events, "commit")
	return t.conn.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	t.conn.events = append(t.conn.events, "rollback")
	return nil
}

type fakeRow struct {
	value any
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *bool:
		*d = r.value.(bool)
	case *int64:
		*d = r.value.(int64)
	default:
		return errors.New("unsupported scan target")
	}
	return nil
}

// fakeOpener hands out conn and records the configs it was asked to open.
type fakeOpener struct {
	conn    *fakeConn
	err     error
	configs []*dbtool.ConnectionConfig
}

func (o *fakeOpener) open(_ context.Context, cfg *dbtool.ConnectionConfig) (dbtool.DBConnection, error) {
	o.configs = append(o.configs, cfg)
	if o.err != nil {
		return nil, o.err
	}
	return o.conn, nil
}
