package interval

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func TestSet_ConflictRule(t *testing.T) {
	var s Set
	ref := uuid.New()
	s.Insert(Span{Start: 540, End: 660, Ref: ref}) // 09:00-11:00

	cases := []struct {
		name       string
		start, end int
		conflicts  bool
	}{
		{"identical", 540, 660, true},
		{"contained", 560, 600, true},
		{"overlap tail", 600, 720, true},
		{"overlap head", 500, 560, true},
		{"touching end is free", 660, 720, false},
		{"touching start is free", 480, 540, false},
		{"disjoint before", 400, 500, false},
		{"disjoint after", 700, 800, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Conflicts(tc.start, tc.end)
			if (len(got) > 0) != tc.conflicts {
				t.Errorf("[%d,%d): conflicts=%v, want %v", tc.start, tc.end, got, tc.conflicts)
			}
			if tc.conflicts && got[0] != ref {
				t.Errorf("expected conflicting ref %s, got %s", ref, got[0])
			}
		})
	}
}

func TestSet_InsertKeepsOrder(t *testing.T) {
	var s Set
	s.Insert(Span{Start: 600, End: 660, Ref: uuid.New()})
	s.Insert(Span{Start: 480, End: 540, Ref: uuid.New()})
	s.Insert(Span{Start: 540, End: 600, Ref: uuid.New()})

	if s.Len() != 3 {
		t.Fatalf("expected 3 spans, got %d", s.Len())
	}
	// A probe over the whole day must return spans in start order.
	refs := s.Conflicts(0, 1440)
	if len(refs) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(refs))
	}
	for i := 1; i < len(s.spans); i++ {
		if s.spans[i-1].Start > s.spans[i].Start {
			t.Fatal("spans out of order after insert")
		}
	}
}

func TestSet_Remove(t *testing.T) {
	var s Set
	ref := uuid.New()
	s.Insert(Span{Start: 540, End: 660, Ref: ref})

	if !s.Remove(ref) {
		t.Error("expected Remove to report success")
	}
	if s.Remove(ref) {
		t.Error("expected second Remove to report nothing removed")
	}
	if got := s.Conflicts(540, 660); len(got) != 0 {
		t.Errorf("expected no conflicts after remove, got %v", got)
	}
}

func TestIndex_DimensionsAreIndependent(t *testing.T) {
	ix := NewIndex()
	room := uuid.New()
	surgeon := uuid.New()
	slot := uuid.New()

	ix.Insert(room, "2024-01-10", Span{Start: 540, End: 660, Ref: slot})
	ix.Insert(surgeon, "2024-01-10", Span{Start: 540, End: 660, Ref: slot})

	if got := ix.Conflicts(room, "2024-01-10", 600, 720); len(got) != 1 {
		t.Errorf("expected room conflict, got %v", got)
	}
	if got := ix.Conflicts(surgeon, "2024-01-10", 600, 720); len(got) != 1 {
		t.Errorf("expected surgeon conflict, got %v", got)
	}
	// Same room, different date: no conflict.
	if got := ix.Conflicts(room, "2024-01-11", 600, 720); len(got) != 0 {
		t.Errorf("expected no conflict on another date, got %v", got)
	}

	ix.Remove(room, "2024-01-10", slot)
	if got := ix.Conflicts(room, "2024-01-10", 600, 720); len(got) != 0 {
		t.Errorf("expected no room conflict after remove, got %v", got)
	}
	// The surgeon dimension still holds its span.
	if got := ix.Conflicts(surgeon, "2024-01-10", 600, 720); len(got) != 1 {
		t.Errorf("expected surgeon conflict to remain, got %v", got)
	}
}

// Randomized sequences of non-overlapping inserts interleaved with removes:
// the set must agree with a naive scan at every step.
func TestSet_MatchesNaiveScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var s Set
	var live []Span

	naiveConflicts := func(start, end int) int {
		n := 0
		for _, sp := range live {
			if sp.Start < end && start < sp.End {
				n++
			}
		}
		return n
	}

	for step := 0; step < 500; step++ {
		start := rng.Intn(1400)
		end := start + 1 + rng.Intn(120)

		if got, want := len(s.Conflicts(start, end)), naiveConflicts(start, end); got != want {
			t.Fatalf("step %d: probe [%d,%d): set says %d, naive says %d", step, start, end, got, want)
		}

		switch {
		case len(live) > 0 && rng.Intn(4) == 0:
			i := rng.Intn(len(live))
			s.Remove(live[i].Ref)
			live = append(live[:i], live[i+1:]...)
		case naiveConflicts(start, end) == 0:
			sp := Span{Start: start, End: end, Ref: uuid.New()}
			s.Insert(sp)
			live = append(live, sp)
		}
	}
}
