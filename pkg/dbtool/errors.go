package dbtool

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	err := tool.WithConnection(ctx, func(s *dbtool.Session) error {
//	    return s.DropProjectDatabases(ctx)
//	})
//	if errors.Is(err, dbtool.ErrUnsafeTarget) {
//	    // reconnect through the management database
//	}
var (
	// ErrInvalidConfig indicates the provided settings or flags are invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSettingsNotFound indicates the settings file does not exist.
	ErrSettingsNotFound = errors.New("settings file not found")

	// ErrUnsafeTarget indicates a bulk create/drop was attempted while connected
	// to one of the databases it would touch.
	ErrUnsafeTarget = errors.New("connected to a managed database")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates SQL execution failed.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrTransactionInProgress indicates an autocommit statement was requested
	// while the scope still holds an open transaction.
	ErrTransactionInProgress = errors.New("transaction in progress")

	// ErrNoConnection indicates a statement was issued outside a connection scope.
	ErrNoConnection = errors.New("no open connection")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// usagePatterns are the message prefixes cobra uses for command-line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrUnsafeTarget):
		return ExitUnsafeTarget
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrSettingsNotFound), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrExecutionFailed), errors.Is(err, ErrTransactionInProgress):
		return ExitExecutionFailed
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ExitExecutionFailed
	}

	errStr := err.Error()
	for _, p := range usagePatterns {
		if strings.HasPrefix(errStr, p) {
			return ExitUsageError
		}
	}

	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
