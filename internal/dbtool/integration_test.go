package dbtool

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/pgdbtool/internal/db"
	"github.com/vvka-141/pgdbtool/internal/logging"
	"github.com/vvka-141/pgdbtool/internal/settings"
	testhelpers "github.com/vvka-141/pgdbtool/internal/testing"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

func TestIntegration_CreateAndDropProjectDatabases(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	ctx := context.Background()

	mainDB := testhelpers.UniqueDBName("dbtool_main")
	testDB := testhelpers.UniqueDBName("dbtool_test")
	t.Cleanup(func() {
		testhelpers.CleanupTestDB(t, cfg, mainDB)
		testhelpers.CleanupTestDB(t, cfg, testDB)
	})

	s := settings.New([]settings.Database{
		{Alias: "default", Engine: dbtool.EnginePostgresPsycopg2, Name: settings.Scalar(mainDB)},
		{Alias: "test", Engine: dbtool.EnginePostgres, Name: settings.Scalar(testDB)},
	}, nil)

	logger := logging.NewNullLogger()
	reg := NewRegistry(s, db.NewOpener(logger), logger)
	tool := reg.Tool(cfg.Database, cfg)

	err := tool.WithConnection(ctx, func(s *Session) error {
		return s.CreateProjectDatabases(ctx)
	})
	require.NoError(t, err)
	assert.True(t, testhelpers.DatabaseExists(t, cfg, mainDB))
	assert.True(t, testhelpers.DatabaseExists(t, cfg, testDB))

	err = tool.WithConnection(ctx, func(s *Session) error {
		return s.CreateProjectDatabases(ctx)
	})
	require.Error(t, err, "second create hits an existing database")

	err = tool.WithConnection(ctx, func(s *Session) error {
		if err := s.TerminateProjectConnections(ctx); err != nil {
			return err
		}
		return s.DropProjectDatabases(ctx)
	})
	require.NoError(t, err)
	assert.False(t, testhelpers.DatabaseExists(t, cfg, mainDB))
	assert.False(t, testhelpers.DatabaseExists(t, cfg, testDB))
}

func TestIntegration_ScopeCommitAndRollback(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	ctx := context.Background()

	name := testhelpers.UniqueDBName("dbtool_scope")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, cfg, name) })

	setup := testhelpers.Connect(t, cfg, cfg.Database)
	_, err := setup.Exec(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err)

	logger := logging.NewNullLogger()
	reg := NewRegistry(nil, db.NewOpener(logger), logger)
	target := cfg.Clone()
	tool := reg.Tool(name, target)

	require.NoError(t, tool.WithConnection(ctx, func(s *Session) error {
		return s.Exec(ctx, "CREATE TABLE marker (id int)", false)
	}))

	bodyErr := errors.New("abort")
	err = tool.WithConnection(ctx, func(s *Session) error {
		if err := s.Exec(ctx, "INSERT INTO marker VALUES (1)", false); err != nil {
			return err
		}
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)

	require.NoError(t, tool.WithConnection(ctx, func(s *Session) error {
		return s.Exec(ctx, "INSERT INTO marker VALUES (2)", false)
	}))

	check := testhelpers.Connect(t, cfg, name)
	var ids []int32
	rows, err := check.Query(ctx, "SELECT id FROM marker ORDER BY id")
	require.NoError(t, err)
	for rows.Next() {
		var id int32
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []int32{2}, ids, "rolled back insert must not be visible")
}

func TestIntegration_GuardAgainstManagedTarget(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	ctx := context.Background()

	name := testhelpers.UniqueDBName("dbtool_guard")
	t.Cleanup(func() { testhelpers.CleanupTestDB(t, cfg, name) })

	setup := testhelpers.Connect(t, cfg, cfg.Database)
	_, err := setup.Exec(ctx, "CREATE DATABASE "+name)
	require.NoError(t, err)

	s := settings.New([]settings.Database{
		{Alias: "default", Engine: dbtool.EnginePostgres, Name: settings.Scalar(name),
			User: settings.Scalar(cfg.Username), Password: settings.Scalar(cfg.Password),
			Host: settings.Scalar(cfg.Host), Port: settings.Scalar(strconv.Itoa(cfg.Port)),
			Options: map[string]settings.Scalar{"sslmode": "disable"}},
	}, nil)

	logger := logging.NewNullLogger()
	reg := NewRegistry(s, db.NewOpener(logger), logger)

	err = reg.Tool(name, cfg).WithConnection(ctx, func(s *Session) error {
		return s.DropProjectDatabases(ctx)
	})
	assert.ErrorIs(t, err, dbtool.ErrUnsafeTarget)
	assert.True(t, testhelpers.DatabaseExists(t, cfg, name))
}
