package dbtool

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid settings or parameters
	ExitConnectionError = 11 // Failed to connect to database
	ExitApprovalDenied  = 12 // User denied drop approval
	ExitExecutionFailed = 13 // SQL execution failed
	ExitUnsafeTarget    = 15 // Connected to one of the managed databases
)

// Engine identifiers recognised as PostgreSQL in the DATABASES settings block.
// Entries with any other ENGINE are skipped by the inventory.
const (
	EnginePostgresPsycopg2 = "django.db.backends.postgresql_psycopg2"
	EnginePostgres         = "django.db.backends.postgresql"
)

// PostgresEngines lists every ENGINE value treated as PostgreSQL.
var PostgresEngines = []string{EnginePostgresPsycopg2, EnginePostgres}

// IsPostgresEngine reports whether engine names a PostgreSQL backend.
func IsPostgresEngine(engine string) bool {
	for _, e := range PostgresEngines {
		if engine == e {
			return true
		}
	}
	return false
}

const (
	// IgnoreAllToken in DATABASES_TO_IGNORE excludes every database from bulk operations.
	IgnoreAllToken = "*"

	// DefaultManagementDB is the database the tool connects to when none is given.
	// It is never part of a project inventory, so create/drop are safe from it.
	DefaultManagementDB = "postgres"

	// Connection defaults applied to fields missing from a settings block
	// and to caller-supplied parameters.
	DefaultUser = "postgres"
	DefaultHost = "localhost"
	DefaultPort = 5432

	// DefaultForceApprovalCountdown is the countdown duration before force approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of connect retries.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout bounds a whole command run.
	DefaultTimeout = 2 * time.Minute
)
