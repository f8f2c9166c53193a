// Package directory is the boundary to the hospital's patient and staff
// directory. The OT core only needs to resolve ids referenced by surgery
// requests; registration and search live in the directory service itself.
package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("directory record not found")

// Record is the subset of a directory entry this service displays and
// validates against.
type Record struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Kind string    `json:"kind"` // patient | staff
	Role string    `json:"role,omitempty"`
}

// Lookup resolves an id to a directory record.
type Lookup interface {
	LookupByID(ctx context.Context, id uuid.UUID) (*Record, error)
}

// StaticDirectory is an in-memory Lookup used in development and tests.
type StaticDirectory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{records: make(map[uuid.UUID]*Record)}
}

func (d *StaticDirectory) Add(r Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rec := r
	d.records[r.ID] = &rec
}

func (d *StaticDirectory) LookupByID(_ context.Context, id uuid.UUID) (*Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	rec, ok := d.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// OpenDirectory accepts every id. Used when the deployment has no directory
// integration configured; validation then rests on the store's foreign keys.
type OpenDirectory struct{}

func (OpenDirectory) LookupByID(_ context.Context, id uuid.UUID) (*Record, error) {
	return &Record{ID: id}, nil
}
