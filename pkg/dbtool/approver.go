package dbtool

import "context"

// Approver handles user interaction for approval workflows,
// particularly for dropping the project databases.
//
// Implementations:
//   - ForcedApprover: Shows countdown and automatically approves
//   - InteractiveApprover: Lists the databases and waits for confirmation
type Approver interface {
	// RequestApproval prompts for confirmation before dropping dbNames.
	// Returns true if approved, false if denied.
	RequestApproval(ctx context.Context, dbNames []string) (bool, error)
}
