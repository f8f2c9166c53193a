package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/otms/otms/internal/domain/progress"
	"github.com/otms/otms/internal/domain/request"
	"github.com/otms/otms/pkg/otime"
)

// RequestSource yields every surgery request in a terminal or near-terminal
// status. Implemented by request.Service.
type RequestSource interface {
	ListFinished(ctx context.Context) ([]*request.SurgeryRequest, error)
}

// ProgressSource yields the audit records of a time window. Implemented by
// progress.Service.
type ProgressSource interface {
	ListWindow(ctx context.Context, from, to time.Time) ([]*progress.SurgeryProgress, error)
}

type Service struct {
	reports  ReportRepository
	requests RequestSource
	progress ProgressSource
}

func NewService(reports ReportRepository, requests RequestSource, prog ProgressSource) *Service {
	return &Service{reports: reports, requests: requests, progress: prog}
}

// Generate computes and stores a report over [startDate, endDate], both
// inclusive. A request belongs to the period when its terminal status was
// recorded inside it. Identical inputs always produce identical metrics and
// summaries; only the snapshot id and generation time differ.
func (s *Service) Generate(ctx context.Context, periodType PeriodType, startDate, endDate string) (*OTReport, error) {
	if !periodType.Valid() {
		return nil, fmt.Errorf("%w: unknown period type %q", ErrValidation, periodType)
	}
	from, err := otime.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	endDay, err := otime.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	to := endDay.AddDate(0, 0, 1)
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: start date %s after end date %s", ErrValidation, startDate, endDate)
	}

	finished, err := s.requests.ListFinished(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.progress.ListWindow(ctx, from, to)
	if err != nil {
		return nil, err
	}

	// When each request reached its terminal status, and which outcome tags
	// were filed for it, all within the window.
	terminalAt := make(map[uuid.UUID]time.Time)
	complicated := make(map[uuid.UUID]bool)
	deceased := make(map[uuid.UUID]bool)
	byRequest := make(map[uuid.UUID]*request.SurgeryRequest, len(finished))
	for _, r := range finished {
		byRequest[r.ID] = r
	}
	for _, p := range records {
		if p.HasTag(progress.TagComplication) {
			complicated[p.RequestID] = true
		}
		if p.HasTag(progress.TagMortality) {
			deceased[p.RequestID] = true
		}
		r, ok := byRequest[p.RequestID]
		if ok && p.Status == string(r.Status) {
			terminalAt[p.RequestID] = p.Timestamp
		}
	}

	m := Metrics{ByUrgency: make(map[request.Urgency]int)}
	var summaries []SurgerySummary
	for _, r := range finished {
		finishedAt, inWindow := terminalAt[r.ID]
		if !inWindow {
			continue
		}
		m.TotalSurgeries++
		m.ByUrgency[r.Urgency]++
		switch r.Status {
		case request.StatusCompleted:
			m.CompletedSurgeries++
			if r.Urgency == request.UrgencyEmergency {
				m.EmergencySurgeries++
			} else {
				m.ElectiveSurgeries++
			}
		case request.StatusCancelled:
			m.CancelledSurgeries++
		case request.StatusPostponed:
			m.PostponedSurgeries++
		}
		if complicated[r.ID] {
			m.Complications++
		}
		if deceased[r.ID] {
			m.Mortality++
		}
		summaries = append(summaries, SurgerySummary{
			RequestID:    r.ID,
			PatientID:    r.PatientID,
			SurgeryType:  r.SurgeryType,
			Urgency:      r.Urgency,
			Outcome:      r.Status,
			FinishedAt:   finishedAt,
			Complication: complicated[r.ID],
			Mortality:    deceased[r.ID],
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].RequestID.String() < summaries[j].RequestID.String()
	})

	rep := &OTReport{
		PeriodType:  periodType,
		StartDate:   startDate,
		EndDate:     endDate,
		Metrics:     m,
		Summaries:   summaries,
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OTReport, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*OTReport, int, error) {
	return s.reports.List(ctx, limit, offset)
}
