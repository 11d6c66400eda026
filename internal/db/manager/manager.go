package manager

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

const (
	queryDatabaseExists       = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	queryTerminateConnections = `
		SELECT count(pg_terminate_backend(pid))
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
)

// Querier runs single-row queries. dbtool.DBConnection satisfies it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) dbtool.Row
}

// Execer runs statements. Both dbtool.DBConnection and dbtool.Transaction satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var plainIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// reservedWords are the PostgreSQL keywords that cannot be used as a bare database name.
var reservedWords = map[string]bool{}

func init() {
	for _, w := range []string{
		"all", "analyse", "analyze", "and", "any", "array", "as", "asc", "asymmetric",
		"authorization", "binary", "both", "case", "cast", "check", "collate", "collation",
		"column", "concurrently", "constraint", "create", "cross", "current_catalog",
		"current_date", "current_role", "current_schema", "current_time", "current_timestamp",
		"current_user", "default", "deferrable", "desc", "distinct", "do", "else", "end",
		"except", "false", "fetch", "for", "foreign", "freeze", "from", "full", "grant",
		"group", "having", "ilike", "in", "initially", "inner", "intersect", "into", "is",
		"isnull", "join", "lateral", "leading", "left", "like", "limit", "localtime",
		"localtimestamp", "natural", "not", "notnull", "null", "offset", "on", "only", "or",
		"order", "outer", "overlaps", "placing", "primary", "references", "returning",
		"right", "select", "session_user", "similar", "some", "symmetric", "system_user",
		"table", "tablesample", "then", "to", "trailing", "true", "union", "unique", "user",
		"using", "variadic", "verbose", "when", "where", "window", "with",
	} {
		reservedWords[w] = true
	}
}

// QuoteIdentifier returns name ready to embed in a statement.
func QuoteIdentifier(name string) string {
	if plainIdentifier.MatchString(name) && !reservedWords[name] {
		return name
	}
	return pgx.Identifier{name}.Sanitize()
}

// CreateStatement returns "CREATE DATABASE <name>;".
func CreateStatement(name string) string {
	return fmt.Sprintf("CREATE DATABASE %s;", QuoteIdentifier(name))
}

// DropStatement returns "DROP DATABASE IF EXISTS <name>;".
func DropStatement(name string) string {
	return fmt.Sprintf("DROP DATABASE IF EXISTS %s;", QuoteIdentifier(name))
}

// Exists reports whether a database called name exists on the server.
func Exists(ctx context.Context, conn Querier, name string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// TerminateConnections terminates every other backend connected to name and
// returns how many were signalled.
func TerminateConnections(ctx context.Context, conn Querier, name string) (int64, error) {
	var terminated int64
	if err := conn.QueryRow(ctx, queryTerminateConnections, name).Scan(&terminated); err != nil {
		return 0, fmt.Errorf("failed to terminate connections to database %q: %w", name, err)
	}
	return terminated, nil
}
