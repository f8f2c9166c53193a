package report

import (
	"context"

	"github.com/google/uuid"
)

// ReportRepository stores immutable report snapshots. No update or delete:
// stale reports stay as a record of what was reported when.
type ReportRepository interface {
	Create(ctx context.Context, r *OTReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*OTReport, error)
	List(ctx context.Context, limit, offset int) ([]*OTReport, int, error)
}
