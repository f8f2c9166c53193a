package checklist

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Item is one entry of a pre-operative checklist. Items live as a jsonb
// array on the checklist row; their order is the order they were supplied.
type Item struct {
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Required    bool       `json:"required"`
	Checked     bool       `json:"checked"`
	CheckedBy   *string    `json:"checked_by,omitempty"`
	CheckedAt   *time.Time `json:"checked_at,omitempty"`
}

// OTChecklist maps to the ot_checklist table. One checklist per surgery
// request; Status is derived from the items, never set directly.
type OTChecklist struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RequestID uuid.UUID `db:"request_id" json:"request_id"`
	Items     []Item    `db:"items" json:"items"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// deriveStatus recomputes the checklist status: pending while nothing is
// checked, completed once every required item is checked, in-progress in
// between.
func deriveStatus(items []Item) Status {
	checked := 0
	requiredLeft := 0
	for _, it := range items {
		if it.Checked {
			checked++
		} else if it.Required {
			requiredLeft++
		}
	}
	switch {
	case checked == 0:
		return StatusPending
	case requiredLeft == 0:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// DefaultItems is the standard pre-operative template applied when a
// checklist is created without explicit items.
func DefaultItems() []Item {
	return []Item{
		{Category: "consent", Description: "Informed consent obtained and signed", Required: true},
		{Category: "preparation", Description: "Fasting status confirmed", Required: true},
		{Category: "preparation", Description: "Surgical site marked and verified", Required: true},
		{Category: "anesthesia", Description: "Anesthesia review completed", Required: true},
	}
}
