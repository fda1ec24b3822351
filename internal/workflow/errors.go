package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthorized means the actor is not the resolved approver for the
	// request's current stage, or holds the wrong role for it.
	ErrNotAuthorized = errors.New("actor is not the authorized approver for the current stage")

	// ErrAlreadyFinalized means the request already reached approved/declined.
	ErrAlreadyFinalized = errors.New("request has already been finalized")

	// ErrNoApprover means no user could be resolved for a stage. The request
	// stays on its current stage; the triggering action is rejected whole.
	ErrNoApprover = errors.New("no approver available for stage")

	// ErrStaleState means another transition was applied between the
	// authorization read and the write. Callers should re-fetch and retry.
	ErrStaleState = errors.New("request was modified concurrently")
)

// UnknownStageError indicates a stage key missing from a definition. This is a
// configuration bug, not a user-facing condition.
type UnknownStageError struct {
	Kind  Kind
	Stage string
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q in %s workflow", e.Stage, e.Kind)
}
