package dbtool

// Reporter receives status messages from tool operations.
// Implementations must be safe for concurrent use by multiple goroutines.
type Reporter interface {
	// Verbose logs detailed diagnostic information.
	// Only logged when verbose mode is enabled.
	Verbose(format string, args ...interface{})

	// Info logs informational messages about normal operations.
	Info(format string, args ...interface{})

	// Success logs a completed step, such as an executed statement.
	Success(format string, args ...interface{})

	// Error logs error messages.
	Error(format string, args ...interface{})
}
