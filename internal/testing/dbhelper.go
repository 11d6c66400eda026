// Package testing holds helpers shared by integration tests that need a live
// PostgreSQL server.
package testing

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/pgdbtool/internal/db"
	"github.com/vvka-141/pgdbtool/internal/db/manager"
	"github.com/vvka-141/pgdbtool/internal/testinfra"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// EnvTestConn points integration tests at an existing server instead of a container.
const EnvTestConn = "PGDBTOOL_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the connection string of the test server.
// Priority: PGDBTOOL_TEST_CONN > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(EnvTestConn); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", EnvTestConn, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// RequireConfig is RequireDatabase parsed into a ConnectionConfig.
func RequireConfig(t *testing.T) *dbtool.ConnectionConfig {
	t.Helper()

	cfg, err := db.ParseConnectionString(RequireDatabase(t))
	if err != nil {
		t.Fatalf("Failed to parse test connection string: %v", err)
	}
	return cfg
}

// UniqueDBName returns a fresh lowercase database name starting with prefix.
func UniqueDBName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Connect opens a connection to database on the server described by cfg,
// closed when the test completes.
func Connect(t *testing.T, cfg *dbtool.ConnectionConfig, database string) *pgx.Conn {
	t.Helper()

	target := cfg.Clone()
	target.Database = database

	conn, err := pgx.Connect(context.Background(), db.BuildConnectionString(target))
	if err != nil {
		t.Fatalf("Failed to connect to %s: %v", database, err)
	}
	t.Cleanup(func() { conn.Close(context.Background()) })
	return conn
}

// DatabaseExists reports whether name exists on the server described by cfg.
func DatabaseExists(t *testing.T, cfg *dbtool.ConnectionConfig, name string) bool {
	t.Helper()

	conn := Connect(t, cfg, testinfra.PostgresDB)
	var exists bool
	if err := conn.QueryRow(context.Background(), "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		t.Fatalf("Failed to check database %s: %v", name, err)
	}
	return exists
}

// CleanupTestDB terminates sessions on name and drops it. Safe to call when it does not exist.
func CleanupTestDB(t *testing.T, cfg *dbtool.ConnectionConfig, name string) {
	t.Helper()

	ctx := context.Background()
	target := cfg.Clone()
	target.Database = testinfra.PostgresDB

	conn, err := pgx.Connect(ctx, db.BuildConnectionString(target))
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer conn.Close(ctx)

	if _, err := manager.TerminateConnections(ctx, db.NewConnAdapter(conn, nil), name); err != nil {
		t.Logf("Warning: %v", err)
	}
	if _, err := conn.Exec(ctx, manager.DropStatement(name)); err != nil {
		t.Logf("Warning: Failed to drop database %s: %v", name, err)
	}
}
