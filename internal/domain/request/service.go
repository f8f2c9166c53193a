package request

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/otms/otms/internal/platform/db"
	"github.com/otms/otms/internal/platform/directory"
	"github.com/otms/otms/internal/platform/notification"
)

// ProgressRecorder appends one audit record per status change. Implemented
// by progress.Service; runs inside the transition transaction so status and
// history never diverge.
type ProgressRecorder interface {
	Record(ctx context.Context, requestID uuid.UUID, status, notes, updatedBy string) error
}

// ChecklistGate reports whether the pre-operative checklist of a request is
// complete. Implemented by checklist.Service.
type ChecklistGate interface {
	IsComplete(ctx context.Context, requestID uuid.UUID) (bool, error)
}

// SlotReleaser frees the slots of a request that will not go ahead.
// Implemented by slot.Service.
type SlotReleaser interface {
	ReleaseForRequest(ctx context.Context, requestID uuid.UUID) error
}

// lockTable hands out one mutex per request id so transitions on different
// requests proceed concurrently while transitions on the same request
// serialize.
type lockTable struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (t *lockTable) lockFor(id uuid.UUID) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

type Service struct {
	requests RequestRepository
	progress ProgressRecorder
	gate     ChecklistGate
	slots    SlotReleaser
	dir      directory.Lookup
	notify   notification.Sink
	tx       db.TxRunner
	locks    *lockTable
	log      zerolog.Logger
}

func NewService(requests RequestRepository, progress ProgressRecorder, gate ChecklistGate,
	dir directory.Lookup, notify notification.Sink, tx db.TxRunner, log zerolog.Logger) *Service {
	return &Service{
		requests: requests,
		progress: progress,
		gate:     gate,
		dir:      dir,
		notify:   notify,
		tx:       tx,
		locks:    newLockTable(),
		log:      log,
	}
}

// SetSlotReleaser breaks the construction cycle with the allocator.
func (s *Service) SetSlotReleaser(r SlotReleaser) { s.slots = r }

// SetChecklistGate breaks the construction cycle with the checklist service,
// which needs this service to resolve requests.
func (s *Service) SetChecklistGate(g ChecklistGate) { s.gate = g }

// Create validates and stores a new surgery request in status pending,
// writing the first audit record in the same transaction.
func (s *Service) Create(ctx context.Context, r *SurgeryRequest, actor string) error {
	switch {
	case r.PatientID == uuid.Nil:
		return fmt.Errorf("%w: patient id is required", ErrValidation)
	case r.RequestingDoctorID == uuid.Nil:
		return fmt.Errorf("%w: requesting doctor id is required", ErrValidation)
	case r.SurgeryType == "":
		return fmt.Errorf("%w: surgery type is required", ErrValidation)
	case r.Diagnosis == "":
		return fmt.Errorf("%w: diagnosis is required", ErrValidation)
	case !r.Urgency.Valid():
		return fmt.Errorf("%w: unknown urgency %q", ErrValidation, r.Urgency)
	}
	if _, err := s.dir.LookupByID(ctx, r.PatientID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return fmt.Errorf("%w: unknown patient id %s", ErrValidation, r.PatientID)
		}
		return err
	}
	if _, err := s.dir.LookupByID(ctx, r.RequestingDoctorID); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return fmt.Errorf("%w: unknown requesting doctor id %s", ErrValidation, r.RequestingDoctorID)
		}
		return err
	}

	r.Status = StatusPending
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Create(ctx, r); err != nil {
			return err
		}
		return s.progress.Record(ctx, r.ID, string(StatusPending), "request created", actor)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*SurgeryRequest, error) {
	return s.requests.GetByID(ctx, id)
}

// RequestingDoctor resolves the doctor who filed a request. The checklist
// gate uses it both as an existence check and as a notification target.
func (s *Service) RequestingDoctor(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	return r.RequestingDoctorID, nil
}

func (s *Service) List(ctx context.Context, status Status, urgency Urgency, limit, offset int) ([]*SurgeryRequest, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if urgency != "" && !urgency.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown urgency %q", ErrValidation, urgency)
	}
	return s.requests.List(ctx, status, urgency, limit, offset)
}

// ListFinished returns every request in a terminal or near-terminal status.
// The report aggregator reads from it.
func (s *Service) ListFinished(ctx context.Context) ([]*SurgeryRequest, error) {
	return s.requests.ListByStatuses(ctx, []Status{StatusCompleted, StatusCancelled, StatusPostponed})
}

// Transition moves a request along one edge of the lifecycle table,
// recording the audit entry atomically with the status change. The
// pre-op to in-progress edge additionally requires a complete checklist,
// verified at the moment of the transition.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status, actor, notes string) (*SurgeryRequest, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	r, err := s.transitionLocked(ctx, id, to, actor, notes)
	if err != nil {
		return nil, err
	}
	// Slot release and notifications happen outside the per-request lock:
	// the allocator takes its own mutex and, during booking, this lock, so
	// calling into it while holding the lock would invert that order.
	if to == StatusCancelled || to == StatusPostponed {
		if s.slots != nil {
			if err := s.slots.ReleaseForRequest(ctx, id); err != nil {
				s.log.Error().Err(err).Str("request_id", id.String()).Msg("failed to release slots")
			}
		}
		s.sendNotification(ctx, r, "surgery-"+string(to), map[string]string{
			"surgery_type": r.SurgeryType,
			"patient_id":   r.PatientID.String(),
		})
	}
	return r, nil
}

func (s *Service) transitionLocked(ctx context.Context, id uuid.UUID, to Status, actor, notes string) (*SurgeryRequest, error) {
	l := s.locks.lockFor(id)
	l.Lock()
	defer l.Unlock()

	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, to) {
		return nil, &TransitionError{From: r.Status, To: to}
	}
	if r.Status == StatusPreOp && to == StatusInProgress {
		complete, err := s.gate.IsComplete(ctx, id)
		if err != nil {
			return nil, err
		}
		if !complete {
			return nil, ErrIncompleteChecklist
		}
	}

	r.Status = to
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.requests.Update(ctx, r); err != nil {
			return err
		}
		return s.progress.Record(ctx, id, string(to), notes, actor)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("request_id", id.String()).
		Str("status", string(to)).
		Str("actor", actor).
		Msg("request transitioned")
	return r, nil
}

// BookableRequest reports whether a request may receive a slot booking.
// Only pending and reviewed requests are bookable.
func (s *Service) BookableRequest(ctx context.Context, id uuid.UUID) error {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != StatusPending && r.Status != StatusReviewed {
		return fmt.Errorf("%w: request is %s", ErrNotBookable, r.Status)
	}
	return nil
}

// MarkScheduled writes the slot details onto the request and moves it to
// scheduled. Called by the allocator inside the booking transaction, so the
// slot row and this change commit together. A pending request skips the
// reviewed stage here; the audit record still captures the jump.
func (s *Service) MarkScheduled(ctx context.Context, id uuid.UUID, sched Schedule, actor string) error {
	l := s.locks.lockFor(id)
	l.Lock()
	defer l.Unlock()

	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != StatusPending && r.Status != StatusReviewed {
		return fmt.Errorf("%w: request is %s", ErrNotBookable, r.Status)
	}

	r.Status = StatusScheduled
	r.ScheduledDate = &sched.Date
	r.ScheduledStart = &sched.Start
	r.ScheduledEnd = &sched.End
	r.RoomID = &sched.RoomID
	r.AssignedStaff = sched.Staff

	if err := s.requests.Update(ctx, r); err != nil {
		return err
	}
	if err := s.progress.Record(ctx, id, string(StatusScheduled),
		fmt.Sprintf("scheduled %s %s-%s", sched.Date, sched.Start, sched.End), actor); err != nil {
		return err
	}

	s.sendNotification(ctx, r, "surgery-scheduled", map[string]string{
		"surgery_type": r.SurgeryType,
		"patient_id":   r.PatientID.String(),
		"date":         sched.Date,
		"start":        sched.Start,
		"end":          sched.End,
		"room":         sched.RoomID.String(),
	})
	return nil
}

// sendNotification tells the requesting doctor and the assigned lead surgeon.
// The sink never fails and never rolls anything back.
func (s *Service) sendNotification(ctx context.Context, r *SurgeryRequest, kind string, data map[string]string) {
	if s.notify == nil {
		return
	}
	users := []uuid.UUID{r.RequestingDoctorID}
	if r.AssignedStaff.LeadSurgeonID != nil {
		users = append(users, *r.AssignedStaff.LeadSurgeonID)
	}
	title, body := notification.Render(kind, data)
	s.notify.Notify(ctx, users, kind, title, body)
}

// UpdateAssessment sets the pre-op assessment, required resources wishlist
// and consent flag. These fields do not participate in the state machine.
func (s *Service) UpdateAssessment(ctx context.Context, id uuid.UUID, assessment *string, resources []string, consent bool) (*SurgeryRequest, error) {
	l := s.locks.lockFor(id)
	l.Lock()
	defer l.Unlock()

	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.PreOpAssessment = assessment
	r.RequiredResources = resources
	r.ConsentObtained = consent
	if err := s.requests.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}
