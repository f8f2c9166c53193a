package request

import (
	"context"

	"github.com/google/uuid"
)

type RequestRepository interface {
	Create(ctx context.Context, r *SurgeryRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*SurgeryRequest, error)
	// Update persists every mutable field of the request.
	Update(ctx context.Context, r *SurgeryRequest) error
	List(ctx context.Context, status Status, urgency Urgency, limit, offset int) ([]*SurgeryRequest, int, error)
	// ListByStatuses returns every request in one of the given statuses.
	// Used by the report aggregator.
	ListByStatuses(ctx context.Context, statuses []Status) ([]*SurgeryRequest, error)
}
