package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/vvka-141/pgdbtool/internal/tui"
	"github.com/vvka-141/pgdbtool/pkg/dbtool"
)

type confirmFunc func(ctx context.Context, in io.Reader, out io.Writer, title string, items []string) (bool, error)

// InteractiveApprover implements the Approver interface with a terminal
// prompt listing the databases to be dropped.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
	confirm confirmFunc
}

// NewInteractiveApprover creates a new InteractiveApprover on stdin/stderr.
func NewInteractiveApprover(verbose bool) dbtool.Approver {
	return &InteractiveApprover{
		verbose: verbose,
		input:   os.Stdin,
		output:  os.Stderr,
		confirm: tui.RunConfirm,
	}
}

// RequestApproval asks the user to confirm dropping dbNames.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, dbNames []string) (bool, error) {
	title := fmt.Sprintf("WARNING: about to DROP %d database(s). All data in them will be lost.", len(dbNames))

	approved, err := a.confirm(ctx, a.input, a.output, title, dbNames)
	if err != nil {
		return false, err
	}
	return approved, nil
}

var _ dbtool.Approver = (*InteractiveApprover)(nil)
