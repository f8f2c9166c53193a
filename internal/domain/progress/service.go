package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	records ProgressRepository
}

func NewService(records ProgressRepository) *Service {
	return &Service{records: records}
}

// Record appends one audit record with a server-assigned timestamp. The
// registry calls it inside the transition transaction, so a status change
// and its record commit together. Satisfies request.ProgressRecorder.
func (s *Service) Record(ctx context.Context, requestID uuid.UUID, status, notes, updatedBy string) error {
	return s.RecordTagged(ctx, requestID, status, notes, updatedBy, nil)
}

// RecordTagged appends a record carrying outcome tags such as complication
// or mortality. Clinical staff file these during and after surgery; the
// report aggregator counts them.
func (s *Service) RecordTagged(ctx context.Context, requestID uuid.UUID, status, notes, updatedBy string, tags []string) error {
	if requestID == uuid.Nil {
		return fmt.Errorf("%w: request id is required", ErrValidation)
	}
	if status == "" {
		return fmt.Errorf("%w: status is required", ErrValidation)
	}
	p := &SurgeryProgress{
		RequestID: requestID,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Notes:     notes,
		UpdatedBy: updatedBy,
		Tags:      tags,
	}
	return s.records.Create(ctx, p)
}

// History returns the full audit trail of a request, oldest first.
func (s *Service) History(ctx context.Context, requestID uuid.UUID) ([]*SurgeryProgress, error) {
	return s.records.ListByRequest(ctx, requestID)
}

// ListWindow returns every record timestamped in [from, to). The report
// aggregator scans it to place finished surgeries in a reporting period.
func (s *Service) ListWindow(ctx context.Context, from, to time.Time) ([]*SurgeryProgress, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: window start must be before end", ErrValidation)
	}
	return s.records.ListWindow(ctx, from, to)
}
