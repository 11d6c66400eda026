package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdbtool/internal/logging"
	"github.com/vvka-141/pgdbtool/internal/settings"
	"github.com/vvka-141/pgdbtool/internal/tui"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

const sampleSettings = `
DATABASES:
  default:
    ENGINE: django.db.backends.postgresql_psycopg2
    NAME: app_main
    USER: app
    HOST: localhost
    PORT: 5432
  reports:
    ENGINE: django.db.backends.postgresql
    NAME: app_reports
  cache:
    ENGINE: django.db.backends.sqlite3
    NAME: cache.sqlite3
  legacy:
    ENGINE: django.db.backends.postgresql
    NAME: app_legacy
DATABASES_TO_IGNORE: ["app_legacy"]
`

// fakeServer stands in for the PostgreSQL server. It records the database
// each connection was opened on and every statement it received.
type fakeServer struct {
	opened   []string
	events   []string
	existing map[string]bool
	failOn   map[string]error
}

type fakeConn struct {
	server *fakeServer
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.server.events = append(c.server.events, "exec:"+sql)
	if err := c.server.failOn[sql]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) dbtool.Row {
	name, _ := args[0].(string)
	switch {
	case strings.Contains(sql, "pg_terminate_backend"):
		c.server.events = append(c.server.events, "terminate:"+name)
		return fakeRow{value: int64(0)}
	case strings.Contains(sql, "pg_database"):
		return fakeRow{value: c.server.existing[name]}
	}
	return fakeRow{err: fmt.Errorf("unexpected query %q", sql)}
}

func (c *fakeConn) BeginReadCommitted(context.Context) (dbtool.Transaction, error) {
	c.server.events = append(c.server.events, "begin")
	return &fakeTx{server: c.server}, nil
}

func (c *fakeConn) Close(context.Context) error {
	c.server.events = append(c.server.events, "close")
	return nil
}

type fakeTx struct {
	server *fakeServer
}

func (t *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	t.server.events = append(t.server.events, "tx:"+sql)
	if err := t.server.failOn[sql]; err != nil {
		return pgconn.CommandTag{}, err
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.server.events = append(t.server.events, "commit")
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.server.events = append(t.server.events, "rollback")
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
		return fmt.Errorf("unsupported scan target %T", dest[0])
	}
	return nil
}

type stubApprover struct {
	approve bool
	calls   [][]string
}

func (a *stubApprover) RequestApproval(_ context.Context, names []string) (bool, error) {
	a.calls = append(a.calls, names)
	return a.approve, nil
}

type harness struct {
	server   *fakeServer
	recorder *logging.Recorder
	approver *stubApprover
}

// newHarness resets command state, isolates the environment and replaces
// the connection, reporter and approver factories with fakes.
func newHarness(t *testing.T) *harness {
	t.Helper()
	resetFlags(t)

	h := &harness{
		server:   &fakeServer{existing: map[string]bool{}, failOn: map[string]error{}},
		recorder: logging.NewRecorder(),
		approver: &stubApprover{approve: true},
	}

	origOpener, origReporter, origApprover := newOpener, newReporter, newApprover
	t.Cleanup(func() { newOpener, newReporter, newApprover = origOpener, origReporter, origApprover })

	newOpener = func(dbtool.Reporter) func(context.Context, *dbtool.ConnectionConfig) (dbtool.DBConnection, error) {
		return func(_ context.Context, cfg *dbtool.ConnectionConfig) (dbtool.DBConnection, error) {
			h.server.opened = append(h.server.opened, cfg.Database)
			return &fakeConn{server: h.server}, nil
		}
	}
	newReporter = func(bool) dbtool.Reporter { return h.recorder }
	newApprover = func(force, verbose bool) (dbtool.Approver, error) { return h.approver, nil }

	return h
}

func resetFlags(t *testing.T) {
	t.Helper()
	connFlags = connFlagValues{timeout: dbtool.DefaultTimeout}
	dropFlags = dropFlagValues{}
	execFlags.isolate = false
	listFlags.offline, listFlags.names = false, false

	for _, name := range []string{
		"PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE", "PGSSLMODE", "DATABASE_URL",
		"AWS_REGION", "AWS_DEFAULT_REGION", "AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
		settings.EnvSettingsPath,
	} {
		t.Setenv(name, "")
	}
	t.Setenv(tui.EnvNonInteractive, "1")
}

// writeSettings writes sampleSettings to a temp file and returns its path.
func writeSettings(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbtool.yaml")
	writeFile(t, path, sampleSettings)
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// execute runs the root command with args and returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), err
}
