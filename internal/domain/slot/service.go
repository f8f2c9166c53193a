package slot

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/otms/otms/internal/domain/catalog"
	"github.com/otms/otms/internal/domain/request"
	"github.com/otms/otms/internal/platform/db"
	"github.com/otms/otms/pkg/interval"
	"github.com/otms/otms/pkg/otime"
)

// Catalog is the slice of the resource catalog the allocator consults before
// and while booking. Implemented by catalog.Service.
type Catalog interface {
	IsAvailable(ctx context.Context, id uuid.UUID, date string, startMin, endMin int) (bool, error)
	GetAvailability(ctx context.Context, id uuid.UUID, date string) ([]catalog.Window, error)
	List(ctx context.Context, kind catalog.Kind, limit, offset int) ([]*catalog.OTResource, int, error)
}

// Registry is the slice of the surgery-request registry a booking touches.
// Implemented by request.Service. MarkScheduled runs inside the booking
// transaction, so the slot row and the request's status change commit or
// roll back together.
type Registry interface {
	BookableRequest(ctx context.Context, id uuid.UUID) error
	MarkScheduled(ctx context.Context, id uuid.UUID, sched request.Schedule, actor string) error
}

type BookSlotInput struct {
	RequestID   uuid.UUID               `json:"request_id"`
	Date        string                  `json:"date"`
	Start       string                  `json:"start"`
	End         string                  `json:"end"`
	RoomID      uuid.UUID               `json:"room_id"`
	ResourceIDs []uuid.UUID             `json:"resource_ids"`
	Staff       request.StaffAssignment `json:"staff"`
}

type BlockSlotInput struct {
	Date        string      `json:"date"`
	Start       string      `json:"start"`
	End         string      `json:"end"`
	RoomID      uuid.UUID   `json:"room_id"`
	ResourceIDs []uuid.UUID `json:"resource_ids"`
	Status      Status      `json:"status"`
	Notes       *string     `json:"notes,omitempty"`
}

// Service allocates operating-theatre slots. All check-then-insert sequences
// run under a single allocator-wide mutex: a booking probes the interval
// index across every resource dimension and inserts only if all probes come
// back clean, and two concurrent bookings must not both observe "clean".
type Service struct {
	mu       sync.Mutex
	slots    SlotRepository
	catalog  Catalog
	registry Registry
	tx       db.TxRunner
	index    *interval.Index
	step     int
	log      zerolog.Logger
}

func NewService(slots SlotRepository, cat Catalog, tx db.TxRunner, stepMinutes int, log zerolog.Logger) *Service {
	if stepMinutes <= 0 {
		stepMinutes = 15
	}
	return &Service{
		slots:   slots,
		catalog: cat,
		tx:      tx,
		index:   interval.NewIndex(),
		step:    stepMinutes,
		log:     log,
	}
}

// SetRegistry breaks the construction cycle between the allocator and the
// registry: the registry needs the allocator to release slots on
// cancellation, the allocator needs the registry to mark requests scheduled.
func (s *Service) SetRegistry(r Registry) { s.registry = r }

// Reload rebuilds the interval index from every active slot in the store.
// Called once at startup before the server accepts traffic.
func (s *Service) Reload(ctx context.Context) error {
	active, err := s.slots.ListActive(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index.Clear()
	for _, sl := range active {
		start, end, err := otime.Range(sl.Start, sl.End)
		if err != nil {
			return fmt.Errorf("slot %s: %w", sl.ID, err)
		}
		s.indexSlot(sl, start, end)
	}
	s.log.Info().Int("slots", len(active)).Msg("interval index rebuilt")
	return nil
}

// indexSlot registers a slot's span under its room and every resource id.
// Caller holds s.mu.
func (s *Service) indexSlot(sl *OTSlot, start, end int) {
	sp := interval.Span{Start: start, End: end, Ref: sl.ID}
	s.index.Insert(sl.RoomID, sl.Date, sp)
	for _, rid := range sl.ResourceIDs {
		s.index.Insert(rid, sl.Date, sp)
	}
}

// unindexSlot removes a slot's spans from every dimension. Caller holds s.mu.
func (s *Service) unindexSlot(sl *OTSlot) {
	s.index.Remove(sl.RoomID, sl.Date, sl.ID)
	for _, rid := range sl.ResourceIDs {
		s.index.Remove(rid, sl.Date, sl.ID)
	}
}

// conflicts probes the room and every resource dimension and returns the
// distinct ids of colliding slots. Caller holds s.mu.
func (s *Service) conflicts(date string, start, end int, roomID uuid.UUID, resourceIDs []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	collect := func(refs []uuid.UUID) {
		for _, ref := range refs {
			if !seen[ref] {
				seen[ref] = true
				ids = append(ids, ref)
			}
		}
	}
	collect(s.index.Conflicts(roomID, date, start, end))
	for _, rid := range resourceIDs {
		collect(s.index.Conflicts(rid, date, start, end))
	}
	return ids
}

// checkDeclaredAvailability verifies the room and every resource has a
// declared available window containing the interval. Resolves unknown ids to
// catalog.ErrNotFound, which doubles as the referential check.
func (s *Service) checkDeclaredAvailability(ctx context.Context, in BookSlotInput, start, end int) error {
	ids := append([]uuid.UUID{in.RoomID}, in.ResourceIDs...)
	for _, id := range ids {
		ok, err := s.catalog.IsAvailable(ctx, id, in.Date, start, end)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: resource %s on %s %s-%s", ErrNotAvailable, id, in.Date, in.Start, in.End)
		}
	}
	return nil
}

// BookSlot reserves a room plus resources for a surgery request and, in the
// same transaction, moves the request to scheduled. Either everything
// commits (slot row, request fields, status, progress record) or nothing
// does.
func (s *Service) BookSlot(ctx context.Context, in BookSlotInput, actor string) (*OTSlot, error) {
	if _, err := otime.ParseDate(in.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start, end, err := otime.Range(in.Start, in.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.RoomID == uuid.Nil {
		return nil, fmt.Errorf("%w: room id is required", ErrValidation)
	}
	if err := s.registry.BookableRequest(ctx, in.RequestID); err != nil {
		return nil, err
	}
	if err := s.checkDeclaredAvailability(ctx, in, start, end); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ids := s.conflicts(in.Date, start, end, in.RoomID, in.ResourceIDs); len(ids) > 0 {
		return nil, &ConflictError{SlotIDs: ids}
	}

	sl := &OTSlot{
		Date:        in.Date,
		Start:       in.Start,
		End:         in.End,
		RoomID:      in.RoomID,
		ResourceIDs: in.ResourceIDs,
		RequestID:   &in.RequestID,
		Status:      StatusBooked,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.slots.Create(ctx, sl); err != nil {
			return err
		}
		return s.registry.MarkScheduled(ctx, in.RequestID, request.Schedule{
			Date:   in.Date,
			Start:  in.Start,
			End:    in.End,
			RoomID: in.RoomID,
			Staff:  in.Staff,
		}, actor)
	})
	if err != nil {
		return nil, err
	}
	s.indexSlot(sl, start, end)
	s.log.Info().
		Str("slot_id", sl.ID.String()).
		Str("request_id", in.RequestID.String()).
		Str("date", in.Date).
		Str("interval", in.Start+"-"+in.End).
		Msg("slot booked")
	return sl, nil
}

// BlockSlot reserves time without a surgery request, for coordinator blocks
// and maintenance. Maintenance blocks survive ReleaseSlot.
func (s *Service) BlockSlot(ctx context.Context, in BlockSlotInput) (*OTSlot, error) {
	if in.Status != StatusBlocked && in.Status != StatusMaintenance {
		return nil, fmt.Errorf("%w: block status must be blocked or maintenance", ErrValidation)
	}
	if _, err := otime.ParseDate(in.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start, end, err := otime.Range(in.Start, in.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if in.RoomID == uuid.Nil {
		return nil, fmt.Errorf("%w: room id is required", ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ids := s.conflicts(in.Date, start, end, in.RoomID, in.ResourceIDs); len(ids) > 0 {
		return nil, &ConflictError{SlotIDs: ids}
	}
	sl := &OTSlot{
		Date:        in.Date,
		Start:       in.Start,
		End:         in.End,
		RoomID:      in.RoomID,
		ResourceIDs: in.ResourceIDs,
		Status:      in.Status,
		Notes:       in.Notes,
	}
	if err := s.slots.Create(ctx, sl); err != nil {
		return nil, err
	}
	s.indexSlot(sl, start, end)
	return sl, nil
}

// ReleaseSlot frees a booked or blocked slot. Maintenance blocks stay put;
// releasing one is a no-op. The request link is kept on released slots for
// traceability.
func (s *Service) ReleaseSlot(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sl.Status == StatusMaintenance {
		return nil
	}
	if sl.Status == StatusAvailable {
		return nil
	}
	if err := s.slots.UpdateStatus(ctx, id, StatusAvailable); err != nil {
		return err
	}
	s.unindexSlot(sl)
	s.log.Info().Str("slot_id", id.String()).Msg("slot released")
	return nil
}

// ReleaseForRequest frees every booked slot linked to a request. Called by
// the registry when a request is cancelled or postponed.
func (s *Service) ReleaseForRequest(ctx context.Context, requestID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booked, err := s.slots.ListBookedForRequest(ctx, requestID)
	if err != nil {
		return err
	}
	for _, sl := range booked {
		if err := s.slots.UpdateStatus(ctx, sl.ID, StatusAvailable); err != nil {
			return err
		}
		s.unindexSlot(sl)
	}
	if len(booked) > 0 {
		s.log.Info().
			Str("request_id", requestID.String()).
			Int("slots", len(booked)).
			Msg("slots released for request")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OTSlot, error) {
	return s.slots.GetByID(ctx, id)
}

func (s *Service) ListByDate(ctx context.Context, date string) ([]*OTSlot, error) {
	if _, err := otime.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.slots.ListByDate(ctx, date)
}

// ResourceInUse reports whether any active slot still references the
// resource. The catalog refuses deletes while this holds.
func (s *Service) ResourceInUse(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.slots.AnyActiveForResource(ctx, id)
}

// findAvailableScanCap bounds the catalog page FindAvailable walks.
const findAvailableScanCap = 1000

// FindAvailable computes (resource, start time) candidates of the given kind
// that could hold a surgery of the given duration on the date. Candidates
// honor declared availability windows and the conflict index at the moment
// of the call; they carry no hold, so a winner must be re-validated through
// BookSlot.
func (s *Service) FindAvailable(ctx context.Context, kind catalog.Kind, date string, durationMinutes int) ([]Candidate, error) {
	if _, err := otime.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}
	resources, _, err := s.catalog.List(ctx, kind, findAvailableScanCap, 0)
	if err != nil {
		return nil, err
	}

	type span struct {
		id         uuid.UUID
		start, end int
	}
	var open []span
	for _, r := range resources {
		windows, err := s.catalog.GetAvailability(ctx, r.ID, date)
		if err != nil {
			return nil, err
		}
		for _, w := range windows {
			if w.Status != catalog.WindowAvailable {
				continue
			}
			ws, we, err := otime.Range(w.Start, w.End)
			if err != nil {
				continue
			}
			open = append(open, span{id: r.ID, start: ws, end: we})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Candidate
	for _, w := range open {
		for t := w.start; t+durationMinutes <= w.end; t += s.step {
			if len(s.index.Conflicts(w.id, date, t, t+durationMinutes)) > 0 {
				continue
			}
			out = append(out, Candidate{
				ResourceID: w.id,
				Date:       date,
				Start:      otime.FormatClock(t),
				End:        otime.FormatClock(t + durationMinutes),
			})
		}
	}
	return out, nil
}
