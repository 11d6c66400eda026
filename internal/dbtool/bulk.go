package dbtool

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgdbtool/internal/db/manager"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// CreateProjectDatabases runs CREATE DATABASE for every available database,
// in declaration order. The first failure stops the loop.
func (s *Session) CreateProjectDatabases(ctx context.Context) error {
	if err := s.checkConnectedToFreeDB("create"); err != nil {
		return err
	}

	names, err := s.runEach(ctx, manager.CreateStatement)
	if err != nil {
		return err
	}

	if len(names) > 0 {
		s.reporter.Info("Created databases: %v", names)
	} else {
		s.reporter.Info("No database was created")
	}
	return nil
}

// DropProjectDatabases runs DROP DATABASE IF EXISTS for every available
// database, in declaration order. The first failure stops the loop.
func (s *Session) DropProjectDatabases(ctx context.Context) error {
	if err := s.checkConnectedToFreeDB("drop"); err != nil {
		return err
	}

	names, err := s.runEach(ctx, manager.DropStatement)
	if err != nil {
		return err
	}

	if len(names) > 0 {
		s.reporter.Info("Dropped databases: %v", names)
	} else {
		s.reporter.Info("No database was dropped")
	}
	return nil
}

// TerminateProjectConnections terminates other backends connected to each
// available database, so that a following drop does not fail on active sessions.
func (s *Session) TerminateProjectConnections(ctx context.Context) error {
	if err := s.checkConnectedToFreeDB("terminate connections to"); err != nil {
		return err
	}
	if s.closed {
		return dbtool.ErrNoConnection
	}

	for _, d := range s.tool.inventory.Available {
		n, err := manager.TerminateConnections(ctx, s.conn, d.PostgresName)
		if err != nil {
			s.reporter.Error("%v", err)
			return err
		}
		if n > 0 {
			s.reporter.Info("Terminated %d connection(s) to %q", n, d.PostgresName)
		}
	}
	return nil
}

func (s *Session) runEach(ctx context.Context, statement func(name string) string) ([]string, error) {
	names := dbtool.PostgresNames(s.tool.inventory.Available)
	for _, name := range names {
		if err := s.Exec(ctx, statement(name), true); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (s *Session) checkConnectedToFreeDB(action string) error {
	return s.tool.Guard(action)
}

// Guard fails when the tool's own database is one of the databases a bulk
// operation would touch. Callers may use it to fail early, before asking for
// approval or opening a connection.
func (t *Tool) Guard(action string) error {
	name := t.name
	if !t.inventory.Manages(name) {
		return nil
	}

	t.reporter.Error("You are trying to %s databases while connected to one of them (%q). Connect to a database outside the project, e.g. %q.",
		action, name, dbtool.DefaultManagementDB)
	return fmt.Errorf("connected to managed database %q: %w", name, dbtool.ErrUnsafeTarget)
}

// DatabaseStatus describes one declared database.
type DatabaseStatus struct {
	dbtool.DatabaseDescriptor

	// Ignored is true when the ignore list excludes the database from bulk operations.
	Ignored bool

	// Exists is true when the database is present on the server.
	Exists bool
}

// Status reports every PostgreSQL database the settings declare, ignored ones included.
func (s *Session) Status(ctx context.Context) ([]DatabaseStatus, error) {
	inv := s.tool.inventory
	statuses := make([]DatabaseStatus, 0, len(inv.Used))
	for _, d := range inv.Used {
		exists, err := s.Exists(ctx, d.PostgresName)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, DatabaseStatus{
			DatabaseDescriptor: d,
			Ignored:            !inv.IsAvailable(d),
			Exists:             exists,
		})
	}
	return statuses, nil
}
