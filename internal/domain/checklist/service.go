package checklist

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/otms/otms/internal/platform/notification"
)

// Requests resolves a surgery request to its requesting doctor. Doubles as
// the existence check when a checklist is created. Implemented by
// request.Service.
type Requests interface {
	RequestingDoctor(ctx context.Context, requestID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	checklists ChecklistRepository
	requests   Requests
	notify     notification.Sink

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(checklists ChecklistRepository, requests Requests, notify notification.Sink) *Service {
	return &Service{
		checklists: checklists,
		requests:   requests,
		notify:     notify,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor serializes item toggles per checklist so the derived status never
// drifts from the items. Unrelated checklists proceed concurrently.
func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// CreateChecklist creates the single checklist of a request. An empty item
// list gets the default pre-operative template.
func (s *Service) CreateChecklist(ctx context.Context, requestID uuid.UUID, items []Item) (*OTChecklist, error) {
	if _, err := s.requests.RequestingDoctor(ctx, requestID); err != nil {
		return nil, err
	}
	if existing, err := s.checklists.GetByRequest(ctx, requestID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, requestID)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if len(items) == 0 {
		items = DefaultItems()
	}
	for i, it := range items {
		if it.Description == "" {
			return nil, fmt.Errorf("%w: item %d has no description", ErrValidation, i)
		}
	}
	c := &OTChecklist{
		RequestID: requestID,
		Items:     items,
		Status:    StatusPending,
	}
	if err := s.checklists.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OTChecklist, error) {
	return s.checklists.GetByID(ctx, id)
}

func (s *Service) GetByRequest(ctx context.Context, requestID uuid.UUID) (*OTChecklist, error) {
	return s.checklists.GetByRequest(ctx, requestID)
}

// CheckItem marks an item checked. Re-checking a checked item only refreshes
// who checked it and when.
func (s *Service) CheckItem(ctx context.Context, checklistID uuid.UUID, itemIndex int, checkedBy string) (*OTChecklist, error) {
	return s.toggle(ctx, checklistID, itemIndex, true, checkedBy)
}

// UncheckItem clears an item. The derived status moves back down; the
// registry re-verifies completeness at the moment of the gated transition,
// so an earlier "complete" is never trusted.
func (s *Service) UncheckItem(ctx context.Context, checklistID uuid.UUID, itemIndex int, checkedBy string) (*OTChecklist, error) {
	return s.toggle(ctx, checklistID, itemIndex, false, checkedBy)
}

func (s *Service) toggle(ctx context.Context, checklistID uuid.UUID, itemIndex int, checked bool, actor string) (*OTChecklist, error) {
	l := s.lockFor(checklistID)
	l.Lock()
	defer l.Unlock()

	c, err := s.checklists.GetByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}
	if itemIndex < 0 || itemIndex >= len(c.Items) {
		return nil, fmt.Errorf("%w: item index %d out of range", ErrValidation, itemIndex)
	}

	it := &c.Items[itemIndex]
	if checked {
		now := time.Now().UTC()
		it.Checked = true
		it.CheckedBy = &actor
		it.CheckedAt = &now
	} else {
		it.Checked = false
		it.CheckedBy = nil
		it.CheckedAt = nil
	}

	prev := c.Status
	c.Status = deriveStatus(c.Items)
	if err := s.checklists.Update(ctx, c); err != nil {
		return nil, err
	}

	if s.notify != nil && prev != StatusCompleted && c.Status == StatusCompleted {
		if doctor, err := s.requests.RequestingDoctor(ctx, c.RequestID); err == nil {
			title, body := notification.Render("checklist-complete", map[string]string{
				"request_id": c.RequestID.String(),
			})
			s.notify.Notify(ctx, []uuid.UUID{doctor}, "checklist-complete", title, body)
		}
	}
	return c, nil
}

// IsComplete reports whether every required checklist item of a request is
// checked. A request without a checklist is incomplete: the gate fails safe
// toward blocking surgery.
func (s *Service) IsComplete(ctx context.Context, requestID uuid.UUID) (bool, error) {
	c, err := s.checklists.GetByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return c.Status == StatusCompleted, nil
}
