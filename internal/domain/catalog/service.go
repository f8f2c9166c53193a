package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/otms/otms/pkg/otime"
)

// UsageChecker reports whether any booked or blocked slot still references a
// resource. Implemented by the slot allocator.
type UsageChecker interface {
	ResourceInUse(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	resources ResourceRepository
	usage     UsageChecker
}

func NewService(resources ResourceRepository, usage UsageChecker) *Service {
	return &Service{resources: resources, usage: usage}
}

// SetUsageChecker breaks the construction cycle with the allocator, which
// reads this catalog while the catalog asks it about slot references.
func (s *Service) SetUsageChecker(u UsageChecker) { s.usage = u }

// Register validates and stores a new resource.
func (s *Service) Register(ctx context.Context, r *OTResource) error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, r.Kind)
	}
	return s.resources.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OTResource, error) {
	return s.resources.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, r *OTResource) error {
	if r.Kind != "" && !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, r.Kind)
	}
	if _, err := s.resources.GetByID(ctx, r.ID); err != nil {
		return err
	}
	return s.resources.Update(ctx, r)
}

// Delete removes a resource unless a booked or blocked slot still references
// it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return err
	}
	if s.usage != nil {
		inUse, err := s.usage.ResourceInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrResourceInUse
		}
	}
	return s.resources.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, kind Kind, limit, offset int) ([]*OTResource, int, error) {
	if kind != "" && !kind.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown kind %q", ErrValidation, kind)
	}
	return s.resources.List(ctx, kind, limit, offset)
}

// SetAvailability replaces the declared windows for a resource on a date.
func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, date string, windows []Window) error {
	if _, err := otime.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, w := range windows {
		if _, _, err := otime.Range(w.Start, w.End); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if !validWindowStatuses[w.Status] {
			return fmt.Errorf("%w: unknown window status %q", ErrValidation, w.Status)
		}
	}
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return err
	}
	return s.resources.SetAvailability(ctx, id, date, windows)
}

func (s *Service) GetAvailability(ctx context.Context, id uuid.UUID, date string) ([]Window, error) {
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.resources.GetAvailability(ctx, id, date)
}

// IsAvailable reports whether some declared window on the date fully contains
// [start, end) with status available. This is a pre-check only: booked and
// blocked slots are the allocator's to verify.
func (s *Service) IsAvailable(ctx context.Context, id uuid.UUID, date string, startMin, endMin int) (bool, error) {
	if _, err := s.resources.GetByID(ctx, id); err != nil {
		return false, err
	}
	windows, err := s.resources.GetAvailability(ctx, id, date)
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if w.Status != WindowAvailable {
			continue
		}
		ws, we, err := otime.Range(w.Start, w.End)
		if err != nil {
			continue
		}
		if ws <= startMin && endMin <= we {
			return true, nil
		}
	}
	return false, nil
}
