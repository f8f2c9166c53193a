package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProgressRepository is append-only: records are created and read, never
// updated or removed.
type ProgressRepository interface {
	Create(ctx context.Context, p *SurgeryProgress) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*SurgeryProgress, error)
	// ListWindow returns every record with Timestamp in [from, to).
	ListWindow(ctx context.Context, from, to time.Time) ([]*SurgeryProgress, error)
}
