package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode of a run.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, scripts, and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// EnvNonInteractive forces non-interactive mode when set to "1".
const EnvNonInteractive = "PGDBTOOL_NON_INTERACTIVE"

// nonInteractiveEnv lists variables that disable interaction when non-empty.
var nonInteractiveEnv = []string{"CI", "NO_COLOR"}

// DetectMode determines whether to prompt and style output.
//
// Returns ModeNonInteractive if:
//   - PGDBTOOL_NON_INTERACTIVE=1 is set
//   - CI or NO_COLOR is set
//   - stdin or stderr is not a terminal
func DetectMode() Mode {
	return detectMode(os.Getenv, term.IsTerminal, int(os.Stdin.Fd()), int(os.Stderr.Fd()))
}

func detectMode(getenv func(string) string, isTerminal func(fd int) bool, fds ...int) Mode {
	if getenv(EnvNonInteractive) == "1" {
		return ModeNonInteractive
	}
	for _, name := range nonInteractiveEnv {
		if getenv(name) != "" {
			return ModeNonInteractive
		}
	}
	for _, fd := range fds {
		if !isTerminal(fd) {
			return ModeNonInteractive
		}
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
