// Package dbtool creates and drops the PostgreSQL databases a project declares.
//
// A Registry hands out one Tool per target database name. A Tool opens a
// connection only inside WithConnection, which commits when the callback
// returns nil and rolls back when it returns an error or panics. The
// connection is closed on every path.
//
//	reg := dbtool.NewRegistry(s, db.NewOpener(logger), logger)
//	tool := reg.Tool("postgres", defaults)
//	err := tool.WithConnection(ctx, func(s *dbtool.Session) error {
//	    return s.CreateProjectDatabases(ctx)
//	})
//
// Bulk operations refuse to run while the tool is connected to one of the
// databases they would create or drop.
package dbtool
