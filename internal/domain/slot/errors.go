package slot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("slot not found")
	ErrValidation = errors.New("validation failed")
	// ErrNotAvailable means a resource has no declared available window
	// containing the requested interval.
	ErrNotAvailable = errors.New("resource not available")
)

// ConflictError reports an overlapping booking attempt, naming every slot
// that collides with the requested interval.
type ConflictError struct {
	SlotIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d existing slot(s): %v", len(e.SlotIDs), e.SlotIDs)
}
