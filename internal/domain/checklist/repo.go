package checklist

import (
	"context"

	"github.com/google/uuid"
)

type ChecklistRepository interface {
	Create(ctx context.Context, c *OTChecklist) error
	GetByID(ctx context.Context, id uuid.UUID) (*OTChecklist, error)
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*OTChecklist, error)
	// Update persists the items and derived status.
	Update(ctx context.Context, c *OTChecklist) error
}
