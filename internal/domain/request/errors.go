package request

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("surgery request not found")
	ErrValidation = errors.New("validation failed")
	// ErrNotBookable means the request is not in a status that accepts a slot
	// booking (pending or reviewed).
	ErrNotBookable = errors.New("request is not bookable")
	// ErrIncompleteChecklist blocks the pre-op to in-progress edge while the
	// pre-operative checklist has unchecked items or does not exist.
	ErrIncompleteChecklist = errors.New("pre-operative checklist incomplete")
)

// TransitionError reports a state-machine edge that is not permitted.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}
