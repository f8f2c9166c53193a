package slot

import (
	"context"

	"github.com/google/uuid"
)

type SlotRepository interface {
	Create(ctx context.Context, s *OTSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*OTSlot, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	ListByDate(ctx context.Context, date string) ([]*OTSlot, error)
	// ListActive returns every slot in status booked, blocked or maintenance.
	// Used to rebuild the interval index at startup.
	ListActive(ctx context.Context) ([]*OTSlot, error)
	// ListBookedForRequest returns the booked slots linked to a request.
	ListBookedForRequest(ctx context.Context, requestID uuid.UUID) ([]*OTSlot, error)
	// AnyActiveForResource reports whether any active slot references the
	// resource as its room or in its resource list.
	AnyActiveForResource(ctx context.Context, resourceID uuid.UUID) (bool, error)
}
