package request

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/otms/otms/internal/platform/directory"
	"github.com/otms/otms/internal/platform/notification"
)

type mockRequestRepo struct {
	requests map[uuid.UUID]*SurgeryRequest
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[uuid.UUID]*SurgeryRequest)}
}

func (m *mockRequestRepo) Create(_ context.Context, r *SurgeryRequest) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*SurgeryRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRequestRepo) Update(_ context.Context, r *SurgeryRequest) error {
	if _, ok := m.requests[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockRequestRepo) List(_ context.Context, status Status, urgency Urgency, limit, offset int) ([]*SurgeryRequest, int, error) {
	var out []*SurgeryRequest
	for _, r := range m.requests {
		if status != "" && r.Status != status {
			continue
		}
		if urgency != "" && r.Urgency != urgency {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockRequestRepo) ListByStatuses(_ context.Context, statuses []Status) ([]*SurgeryRequest, error) {
	var out []*SurgeryRequest
	for _, r := range m.requests {
		for _, s := range statuses {
			if r.Status == s {
				cp := *r
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

type progressEntry struct {
	RequestID uuid.UUID
	Status    string
	Notes     string
	UpdatedBy string
}

type memProgress struct {
	entries []progressEntry
}

func (p *memProgress) Record(_ context.Context, requestID uuid.UUID, status, notes, updatedBy string) error {
	p.entries = append(p.entries, progressEntry{requestID, status, notes, updatedBy})
	return nil
}

type stubGate struct{ complete bool }

func (g stubGate) IsComplete(context.Context, uuid.UUID) (bool, error) {
	return g.complete, nil
}

type stubReleaser struct{ released []uuid.UUID }

func (r *stubReleaser) ReleaseForRequest(_ context.Context, id uuid.UUID) error {
	r.released = append(r.released, id)
	return nil
}

type nopTx struct{}

func (nopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	repo     *mockRequestRepo
	progress *memProgress
	gate     *stubGate
	releaser *stubReleaser
	sink     *notification.MemorySink
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMockRequestRepo(),
		progress: &memProgress{},
		gate:     &stubGate{},
		releaser: &stubReleaser{},
		sink:     notification.NewMemorySink(),
	}
	f.svc = NewService(f.repo, f.progress, f.gate, directory.OpenDirectory{}, f.sink, nopTx{}, zerolog.Nop())
	f.svc.SetSlotReleaser(f.releaser)
	return f
}

func (f *fixture) seed(t *testing.T, status Status) *SurgeryRequest {
	t.Helper()
	r := &SurgeryRequest{
		PatientID:          uuid.New(),
		RequestingDoctorID: uuid.New(),
		SurgeryType:        "appendectomy",
		Urgency:            UrgencyUrgent,
		Diagnosis:          "acute appendicitis",
		Status:             status,
	}
	if err := f.repo.Create(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	valid := SurgeryRequest{
		PatientID:          uuid.New(),
		RequestingDoctorID: uuid.New(),
		SurgeryType:        "appendectomy",
		Urgency:            UrgencyEmergency,
		Diagnosis:          "acute appendicitis",
	}
	cases := []struct {
		name   string
		mutate func(*SurgeryRequest)
	}{
		{"missing patient", func(r *SurgeryRequest) { r.PatientID = uuid.Nil }},
		{"missing doctor", func(r *SurgeryRequest) { r.RequestingDoctorID = uuid.Nil }},
		{"missing type", func(r *SurgeryRequest) { r.SurgeryType = "" }},
		{"missing diagnosis", func(r *SurgeryRequest) { r.Diagnosis = "" }},
		{"bad urgency", func(r *SurgeryRequest) { r.Urgency = "whenever" }},
	}
	for _, tc := range cases {
		r := valid
		tc.mutate(&r)
		if err := f.svc.Create(ctx, &r, "dr-a"); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tc.name, err)
		}
	}

	r := valid
	if err := f.svc.Create(ctx, &r, "dr-a"); err != nil {
		t.Fatalf("valid create: %v", err)
	}
	if r.Status != StatusPending {
		t.Fatalf("new request should be pending, got %s", r.Status)
	}
	if len(f.progress.entries) != 1 || f.progress.entries[0].Status != string(StatusPending) {
		t.Fatalf("create should write the initial audit record, got %+v", f.progress.entries)
	}
}

func TestCreateUnknownDirectoryIDs(t *testing.T) {
	dir := directory.NewStaticDirectory()
	patient := uuid.New()
	dir.Add(directory.Record{ID: patient, Name: "Pat", Kind: "patient"})

	f := newFixture()
	f.svc = NewService(f.repo, f.progress, f.gate, dir, f.sink, nopTx{}, zerolog.Nop())

	r := SurgeryRequest{
		PatientID:          patient,
		RequestingDoctorID: uuid.New(), // not in directory
		SurgeryType:        "appendectomy",
		Urgency:            UrgencyRoutine,
		Diagnosis:          "appendicitis",
	}
	if err := f.svc.Create(context.Background(), &r, "dr-a"); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation for unknown doctor", err)
	}
}

// TestTransitionTable walks every ordered status pair and asserts Transition
// succeeds exactly on the enumerated lifecycle edges.
func TestTransitionTable(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:    {StatusReviewed, StatusCancelled, StatusPostponed},
		StatusReviewed:   {StatusScheduled, StatusCancelled, StatusPostponed},
		StatusScheduled:  {StatusPreOp, StatusCancelled, StatusPostponed},
		StatusPreOp:      {StatusInProgress},
		StatusInProgress: {StatusPostOp},
		StatusPostOp:     {StatusCompleted},
	}
	all := []Status{
		StatusPending, StatusReviewed, StatusScheduled, StatusPreOp,
		StatusInProgress, StatusPostOp, StatusCompleted, StatusCancelled, StatusPostponed,
	}
	isAllowed := func(from, to Status) bool {
		for _, s := range allowed[from] {
			if s == to {
				return true
			}
		}
		return false
	}

	ctx := context.Background()
	for _, from := range all {
		for _, to := range all {
			f := newFixture()
			f.gate.complete = true // isolate the edge table from the gate
			r := f.seed(t, from)

			_, err := f.svc.Transition(ctx, r.ID, to, "actor", "")
			if isAllowed(from, to) {
				if err != nil {
					t.Errorf("%s -> %s: got %v, want success", from, to, err)
				}
				continue
			}
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Errorf("%s -> %s: got %v, want TransitionError", from, to, err)
			} else if te.From != from || te.To != to {
				t.Errorf("%s -> %s: error names %s -> %s", from, to, te.From, te.To)
			}
		}
	}
}

func TestTransitionPendingToInProgressRejected(t *testing.T) {
	f := newFixture()
	r := f.seed(t, StatusPending)

	_, err := f.svc.Transition(context.Background(), r.ID, StatusInProgress, "actor", "")
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want TransitionError", err)
	}
	if len(f.progress.entries) != 0 {
		t.Fatal("rejected transition must not write an audit record")
	}
}

func TestChecklistGatesInProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	r := f.seed(t, StatusPreOp)

	f.gate.complete = false
	if _, err := f.svc.Transition(ctx, r.ID, StatusInProgress, "surgeon", ""); !errors.Is(err, ErrIncompleteChecklist) {
		t.Fatalf("got %v, want ErrIncompleteChecklist", err)
	}

	f.gate.complete = true
	got, err := f.svc.Transition(ctx, r.ID, StatusInProgress, "surgeon", "")
	if err != nil {
		t.Fatalf("transition with complete checklist: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Fatalf("got status %s, want in-progress", got.Status)
	}
	if len(f.progress.entries) != 1 || f.progress.entries[0].Status != string(StatusInProgress) {
		t.Fatalf("audit record missing, got %+v", f.progress.entries)
	}
}

func TestCancelReleasesSlotsAndNotifies(t *testing.T) {
	f := newFixture()
	r := f.seed(t, StatusScheduled)

	if _, err := f.svc.Transition(context.Background(), r.ID, StatusCancelled, "coord", "patient unfit"); err != nil {
		t.Fatal(err)
	}
	if len(f.releaser.released) != 1 || f.releaser.released[0] != r.ID {
		t.Fatalf("cancel should release slots for %s, got %v", r.ID, f.releaser.released)
	}
	sent := f.sink.Sent()
	if len(sent) != 1 || sent[0].Kind != "surgery-cancelled" {
		t.Fatalf("expected one surgery-cancelled notification, got %+v", sent)
	}
}

func TestMarkScheduled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lead := uuid.New()

	sched := Schedule{
		Date: "2024-01-10", Start: "09:00", End: "11:00", RoomID: uuid.New(),
		Staff: StaffAssignment{LeadSurgeonID: &lead},
	}

	for _, from := range []Status{StatusPending, StatusReviewed} {
		r := f.seed(t, from)
		if err := f.svc.MarkScheduled(ctx, r.ID, sched, "coord"); err != nil {
			t.Fatalf("from %s: %v", from, err)
		}
		got, err := f.svc.Get(ctx, r.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != StatusScheduled {
			t.Fatalf("from %s: got status %s", from, got.Status)
		}
		if got.ScheduledDate == nil || *got.ScheduledDate != sched.Date || got.RoomID == nil {
			t.Fatalf("from %s: scheduled fields not written: %+v", from, got)
		}
		if got.AssignedStaff.LeadSurgeonID == nil || *got.AssignedStaff.LeadSurgeonID != lead {
			t.Fatalf("from %s: staff not assigned", from)
		}
	}

	for _, from := range []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled} {
		r := f.seed(t, from)
		if err := f.svc.MarkScheduled(ctx, r.ID, sched, "coord"); !errors.Is(err, ErrNotBookable) {
			t.Fatalf("from %s: got %v, want ErrNotBookable", from, err)
		}
	}
}

func TestBookableRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.svc.BookableRequest(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
	for _, tc := range []struct {
		status Status
		ok     bool
	}{
		{StatusPending, true}, {StatusReviewed, true},
		{StatusScheduled, false}, {StatusCancelled, false},
	} {
		r := f.seed(t, tc.status)
		err := f.svc.BookableRequest(ctx, r.ID)
		if tc.ok && err != nil {
			t.Errorf("%s: %v", tc.status, err)
		}
		if !tc.ok && !errors.Is(err, ErrNotBookable) {
			t.Errorf("%s: got %v, want ErrNotBookable", tc.status, err)
		}
	}
}
