// Package interval provides per-resource, per-date sets of half-open time
// intervals with logarithmic overlap probes. The slot allocator keeps one set
// per (resource id, date) pair so a booking attempt touching a room plus N
// staff/equipment ids costs O((N+1) log m) instead of a scan over every slot.
package interval

import (
	"sort"

	"github.com/google/uuid"
)

// Span is a half-open interval [Start, End) in minutes since midnight,
// tagged with the id of the slot that owns it.
type Span struct {
	Start int
	End   int
	Ref   uuid.UUID
}

// Set holds non-overlapping spans sorted by start. Callers serialize their
// check-then-insert sequences; the set itself assumes single-writer access.
type Set struct {
	spans []Span
}

// Conflicts returns the refs of all spans overlapping [start, end). Two
// intervals [s1,e1) and [s2,e2) overlap iff s1 < e2 && s2 < e1. Because the
// stored spans never overlap each other, the hits form a contiguous run,
// found by binary search.
func (s *Set) Conflicts(start, end int) []uuid.UUID {
	i := sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].End > start
	})
	var refs []uuid.UUID
	for ; i < len(s.spans) && s.spans[i].Start < end; i++ {
		refs = append(refs, s.spans[i].Ref)
	}
	return refs
}

// Insert adds a span, keeping the set sorted by start.
func (s *Set) Insert(sp Span) {
	i := sort.Search(len(s.spans), func(i int) bool {
		return s.spans[i].Start >= sp.Start
	})
	s.spans = append(s.spans, Span{})
	copy(s.spans[i+1:], s.spans[i:])
	s.spans[i] = sp
}

// Remove deletes every span tagged with ref. Returns true if any was removed.
func (s *Set) Remove(ref uuid.UUID) bool {
	removed := false
	out := s.spans[:0]
	for _, sp := range s.spans {
		if sp.Ref == ref {
			removed = true
			continue
		}
		out = append(out, sp)
	}
	s.spans = out
	return removed
}

// Len returns the number of spans in the set.
func (s *Set) Len() int { return len(s.spans) }

type key struct {
	resource uuid.UUID
	date     string
}

// Index maps (resource id, date) pairs to their interval sets. A slot that
// reserves a room and N resources is inserted under N+1 keys, all carrying
// the slot id as ref.
type Index struct {
	sets map[key]*Set
}

func NewIndex() *Index {
	return &Index{sets: make(map[key]*Set)}
}

// Conflicts probes one resource dimension.
func (ix *Index) Conflicts(resource uuid.UUID, date string, start, end int) []uuid.UUID {
	set, ok := ix.sets[key{resource, date}]
	if !ok {
		return nil
	}
	return set.Conflicts(start, end)
}

// Insert registers a span under one resource dimension.
func (ix *Index) Insert(resource uuid.UUID, date string, sp Span) {
	k := key{resource, date}
	set, ok := ix.sets[k]
	if !ok {
		set = &Set{}
		ix.sets[k] = set
	}
	set.Insert(sp)
}

// Remove drops every span tagged ref under one resource dimension, pruning
// empty sets.
func (ix *Index) Remove(resource uuid.UUID, date string, ref uuid.UUID) {
	k := key{resource, date}
	set, ok := ix.sets[k]
	if !ok {
		return
	}
	set.Remove(ref)
	if set.Len() == 0 {
		delete(ix.sets, k)
	}
}

// Clear empties the index. Used before a rebuild from the store.
func (ix *Index) Clear() {
	ix.sets = make(map[key]*Set)
}
