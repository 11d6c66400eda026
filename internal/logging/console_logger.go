package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vvka-141/pgdbtool/internal/tui"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// ConsoleLogger writes log messages to stderr.
// Safe for concurrent use by multiple goroutines.
type ConsoleLogger struct {
	verbose bool
	styled  bool
	out     io.Writer
	mu      sync.Mutex
}

// NewConsoleLogger creates a new ConsoleLogger writing to stderr.
// If verbose is true, Verbose() calls will produce output.
// Success and error lines are colored when running interactively.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		verbose: verbose,
		styled:  tui.IsInteractive(),
		out:     os.Stderr,
	}
}

// NewWriterLogger creates an unstyled ConsoleLogger writing to w.
func NewWriterLogger(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		verbose: verbose,
		out:     w,
	}
}

func (l *ConsoleLogger) write(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.out, line+"\n")
}

func format(format string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Verbose logs detailed diagnostic information if verbose mode is enabled.
func (l *ConsoleLogger) Verbose(f string, args ...interface{}) {
	if !l.verbose {
		return
	}
	line := "[VERBOSE] " + format(f, args)
	if l.styled {
		line = tui.VerboseStyle.Render(line)
	}
	l.write(line)
}

// Info logs informational messages about normal operations.
func (l *ConsoleLogger) Info(f string, args ...interface{}) {
	l.write(format(f, args))
}

// Success logs a completed step.
func (l *ConsoleLogger) Success(f string, args ...interface{}) {
	line := tui.SymbolCheck + " " + format(f, args)
	if l.styled {
		line = tui.SuccessStyle.Render(line)
	}
	l.write(line)
}

// Error logs error messages.
func (l *ConsoleLogger) Error(f string, args ...interface{}) {
	line := "[ERROR] " + format(f, args)
	if l.styled {
		line = tui.ErrorStyle.Render(line)
	}
	l.write(line)
}

var _ dbtool.Reporter = (*ConsoleLogger)(nil)
