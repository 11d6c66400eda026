package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/pgdbtool/internal/cli"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(dbtool.ExitPanic)
		}
	}()

	if os.Getenv("PGDBTOOL_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(dbtool.ExitCodeForError(err))
	}
}
