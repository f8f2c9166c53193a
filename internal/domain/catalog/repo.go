package catalog

import (
	"context"

	"github.com/google/uuid"
)

type ResourceRepository interface {
	Create(ctx context.Context, r *OTResource) error
	GetByID(ctx context.Context, id uuid.UUID) (*OTResource, error)
	Update(ctx context.Context, r *OTResource) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, kind Kind, limit, offset int) ([]*OTResource, int, error)
	// SetAvailability replaces the declared windows for one resource on one date.
	SetAvailability(ctx context.Context, id uuid.UUID, date string, windows []Window) error
	GetAvailability(ctx context.Context, id uuid.UUID, date string) ([]Window, error)
}
