package progress

import (
	"time"

	"github.com/google/uuid"
)

// Tags the report aggregator counts.
const (
	TagComplication = "complication"
	TagMortality    = "mortality"
)

// SurgeryProgress is one append-only audit record: a status snapshot of a
// surgery request with a server-assigned timestamp. Rows are never edited or
// deleted. Maps to the surgery_progress table.
type SurgeryProgress struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RequestID uuid.UUID `db:"request_id" json:"request_id"`
	Status    string    `db:"status" json:"status"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Notes     string    `db:"notes" json:"notes"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
	Tags      []string  `db:"tags" json:"tags,omitempty"`
}

// HasTag reports whether the record carries the tag.
func (p *SurgeryProgress) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
