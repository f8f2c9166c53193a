package progress

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockProgressRepo struct {
	records []*SurgeryProgress
}

func (m *mockProgressRepo) Create(_ context.Context, p *SurgeryProgress) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.records = append(m.records, &cp)
	return nil
}

func (m *mockProgressRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]*SurgeryProgress, error) {
	var out []*SurgeryProgress
	for _, p := range m.records {
		if p.RequestID == requestID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *mockProgressRepo) ListWindow(_ context.Context, from, to time.Time) ([]*SurgeryProgress, error) {
	var out []*SurgeryProgress
	for _, p := range m.records {
		if !p.Timestamp.Before(from) && p.Timestamp.Before(to) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func TestRecordAndHistory(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	requestID := uuid.New()

	if err := svc.Record(ctx, uuid.Nil, "pending", "", "actor"); !errors.Is(err, ErrValidation) {
		t.Fatalf("nil request id: got %v, want ErrValidation", err)
	}
	if err := svc.Record(ctx, requestID, "", "", "actor"); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty status: got %v, want ErrValidation", err)
	}

	for _, status := range []string{"pending", "scheduled", "pre-op"} {
		if err := svc.Record(ctx, requestID, status, "", "coord"); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Record(ctx, uuid.New(), "pending", "", "coord"); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, requestID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d records, want 3", len(history))
	}
	for i, want := range []string{"pending", "scheduled", "pre-op"} {
		if history[i].Status != want {
			t.Errorf("record %d: got %s, want %s", i, history[i].Status, want)
		}
		if history[i].Timestamp.IsZero() {
			t.Errorf("record %d: timestamp not assigned", i)
		}
	}
}

func TestRecordTagged(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := NewService(repo)
	ctx := context.Background()
	requestID := uuid.New()

	if err := svc.RecordTagged(ctx, requestID, "in-progress", "unexpected bleeding", "surgeon",
		[]string{TagComplication}); err != nil {
		t.Fatal(err)
	}
	history, err := svc.History(ctx, requestID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || !history[0].HasTag(TagComplication) {
		t.Fatalf("tag not persisted: %+v", history)
	}
	if history[0].HasTag(TagMortality) {
		t.Fatal("HasTag matched a tag that was never set")
	}
}

func TestListWindow(t *testing.T) {
	repo := &mockProgressRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{base, base.Add(time.Hour), base.Add(48 * time.Hour)} {
		repo.records = append(repo.records, &SurgeryProgress{
			ID: uuid.New(), RequestID: uuid.New(), Status: "completed", Timestamp: ts, UpdatedBy: "x",
		})
	}

	got, err := svc.ListWindow(ctx, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records in window, want 2", len(got))
	}

	if _, err := svc.ListWindow(ctx, base, base); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty window: got %v, want ErrValidation", err)
	}
}
