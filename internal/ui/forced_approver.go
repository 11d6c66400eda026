package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose   bool
	output    io.Writer
	countdown time.Duration
	sleepFn   func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover writing to stderr.
func NewForcedApprover(verbose bool) dbtool.Approver {
	return &ForcedApprover{
		verbose:   verbose,
		output:    os.Stderr,
		countdown: dbtool.DefaultForceApprovalCountdown,
		sleepFn:   time.Sleep,
	}
}

// RequestApproval prints the databases about to be dropped, counts down and approves.
func (a *ForcedApprover) RequestApproval(ctx context.Context, dbNames []string) (bool, error) {
	fmt.Fprintf(a.output, "\nDANGER: dropping %d database(s): %s\n", len(dbNames), strings.Join(dbNames, ", "))

	for i := int(a.countdown.Seconds()); i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rDropping in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with drop...                                   \n")
	return true, nil
}

var _ dbtool.Approver = (*ForcedApprover)(nil)
