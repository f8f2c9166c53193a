package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockResourceRepo struct {
	resources map[uuid.UUID]*OTResource
	windows   map[string][]Window // key: id + "|" + date
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{
		resources: make(map[uuid.UUID]*OTResource),
		windows:   make(map[string][]Window),
	}
}

func (m *mockResourceRepo) Create(_ context.Context, r *OTResource) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	m.resources[r.ID] = &cp
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id uuid.UUID) (*OTResource, error) {
	r, ok := m.resources[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockResourceRepo) Update(_ context.Context, r *OTResource) error {
	if _, ok := m.resources[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.resources[r.ID] = &cp
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.resources[id]; !ok {
		return ErrNotFound
	}
	delete(m.resources, id)
	return nil
}

func (m *mockResourceRepo) List(_ context.Context, kind Kind, limit, offset int) ([]*OTResource, int, error) {
	var out []*OTResource
	for _, r := range m.resources {
		if kind != "" && r.Kind != kind {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *mockResourceRepo) SetAvailability(_ context.Context, id uuid.UUID, date string, windows []Window) error {
	m.windows[id.String()+"|"+date] = windows
	return nil
}

func (m *mockResourceRepo) GetAvailability(_ context.Context, id uuid.UUID, date string) ([]Window, error) {
	return m.windows[id.String()+"|"+date], nil
}

type stubUsage struct{ inUse bool }

func (s stubUsage) ResourceInUse(context.Context, uuid.UUID) (bool, error) {
	return s.inUse, nil
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMockResourceRepo(), stubUsage{})
	ctx := context.Background()

	if err := svc.Register(ctx, &OTResource{Kind: KindRoom}); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing name: got %v, want ErrValidation", err)
	}
	if err := svc.Register(ctx, &OTResource{Name: "OT-1", Kind: "helipad"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad kind: got %v, want ErrValidation", err)
	}
	r := &OTResource{Name: "OT-1", Kind: KindRoom}
	if err := svc.Register(ctx, r); err != nil {
		t.Fatalf("valid register: %v", err)
	}
	if r.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}
}

func TestDeleteGuardedByUsage(t *testing.T) {
	repo := newMockResourceRepo()
	ctx := context.Background()

	r := &OTResource{Name: "C-arm", Kind: KindEquipment}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatal(err)
	}

	busy := NewService(repo, stubUsage{inUse: true})
	if err := busy.Delete(ctx, r.ID); !errors.Is(err, ErrResourceInUse) {
		t.Fatalf("got %v, want ErrResourceInUse", err)
	}
	if _, err := repo.GetByID(ctx, r.ID); err != nil {
		t.Fatalf("resource should survive a refused delete: %v", err)
	}

	free := NewService(repo, stubUsage{inUse: false})
	if err := free.Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after delete", err)
	}
}

func TestSetAvailabilityValidation(t *testing.T) {
	repo := newMockResourceRepo()
	svc := NewService(repo, stubUsage{})
	ctx := context.Background()

	r := &OTResource{Name: "Dr. Rao", Kind: KindSurgeon}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name    string
		date    string
		windows []Window
		wantErr bool
	}{
		{"bad date", "28-08-2026", []Window{{Start: "09:00", End: "12:00", Status: WindowAvailable}}, true},
		{"inverted window", "2026-08-28", []Window{{Start: "12:00", End: "09:00", Status: WindowAvailable}}, true},
		{"bad status", "2026-08-28", []Window{{Start: "09:00", End: "12:00", Status: "on-call"}}, true},
		{"ok", "2026-08-28", []Window{{Start: "09:00", End: "12:00", Status: WindowAvailable}}, false},
	}
	for _, tc := range cases {
		err := svc.SetAvailability(ctx, r.ID, tc.date, tc.windows)
		if tc.wantErr && !errors.Is(err, ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tc.name, err)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: %v", tc.name, err)
		}
	}
}

func TestIsAvailableWindowContainment(t *testing.T) {
	repo := newMockResourceRepo()
	svc := NewService(repo, stubUsage{})
	ctx := context.Background()

	r := &OTResource{Name: "OT-2", Kind: KindRoom}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatal(err)
	}
	const date = "2026-09-01"
	windows := []Window{
		{Start: "08:00", End: "12:00", Status: WindowAvailable},
		{Start: "12:00", End: "14:00", Status: WindowBusy},
		{Start: "14:00", End: "18:00", Status: WindowUnavailable},
	}
	if err := svc.SetAvailability(ctx, r.ID, date, windows); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"fully inside available", 9 * 60, 11 * 60, true},
		{"exact available window", 8 * 60, 12 * 60, true},
		{"spills past available end", 10 * 60, 13 * 60, false},
		{"inside busy window", 12*60 + 30, 13 * 60, false},
		{"inside unavailable window", 15 * 60, 16 * 60, false},
		{"no window at all", 19 * 60, 20 * 60, false},
	}
	for _, tc := range cases {
		got, err := svc.IsAvailable(ctx, r.ID, date, tc.start, tc.end)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := svc.IsAvailable(ctx, uuid.New(), date, 9*60, 10*60); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown resource: got %v, want ErrNotFound", err)
	}
}
