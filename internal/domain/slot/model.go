package slot

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable   Status = "available"
	StatusBooked      Status = "booked"
	StatusBlocked     Status = "blocked"
	StatusMaintenance Status = "maintenance"
)

// OTSlot is one composite reservation: a room plus zero or more staff or
// equipment resources over [Start, End) on Date. Maps to the ot_slot table.
// Dates are "2006-01-02" strings, times "HH:MM".
type OTSlot struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Date        string      `db:"date" json:"date"`
	Start       string      `db:"start_time" json:"start"`
	End         string      `db:"end_time" json:"end"`
	RoomID      uuid.UUID   `db:"room_id" json:"room_id"`
	ResourceIDs []uuid.UUID `db:"resource_ids" json:"resource_ids"`
	RequestID   *uuid.UUID  `db:"request_id" json:"request_id,omitempty"`
	Status      Status      `db:"status" json:"status"`
	Notes       *string     `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// Active reports whether the slot still holds its interval against new
// bookings. Released slots become available and stop conflicting.
func (s *OTSlot) Active() bool {
	return s.Status == StatusBooked || s.Status == StatusBlocked || s.Status == StatusMaintenance
}

// Candidate is one (resource, start time) produced by FindAvailable. It is a
// snapshot, not a hold: a concurrent booking can invalidate it at any moment,
// so callers must re-validate through BookSlot.
type Candidate struct {
	ResourceID uuid.UUID `json:"resource_id"`
	Date       string    `json:"date"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
}
