package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// RunConfirm shows a ConfirmModel on out, reading keys from in, and returns
// the user's answer. Context cancellation aborts the prompt.
func RunConfirm(ctx context.Context, in io.Reader, out io.Writer, title string, items []string) (bool, error) {
	program := tea.NewProgram(
		NewConfirmModel(title, items),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := program.Run()
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	model, ok := final.(ConfirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected prompt model %T", final)
	}
	return model.Confirmed(), nil
}
