package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies an operating-theatre resource.
type Kind string

const (
	KindSurgeon          Kind = "surgeon"
	KindAnesthesiologist Kind = "anesthesiologist"
	KindNurse            Kind = "nurse"
	KindRoom             Kind = "room"
	KindEquipment        Kind = "equipment"
	KindInstrument       Kind = "instrument"
)

var validKinds = map[Kind]bool{
	KindSurgeon: true, KindAnesthesiologist: true, KindNurse: true,
	KindRoom: true, KindEquipment: true, KindInstrument: true,
}

func (k Kind) Valid() bool { return validKinds[k] }

// WindowStatus marks how a declared availability window may be used.
type WindowStatus string

const (
	WindowAvailable   WindowStatus = "available"
	WindowBusy        WindowStatus = "busy"
	WindowUnavailable WindowStatus = "unavailable"
)

var validWindowStatuses = map[WindowStatus]bool{
	WindowAvailable: true, WindowBusy: true, WindowUnavailable: true,
}

// Window is a declared availability interval on one date, times as "HH:MM".
type Window struct {
	Start  string       `json:"start"`
	End    string       `json:"end"`
	Status WindowStatus `json:"status"`
}

// OTResource maps to the ot_resource table.
type OTResource struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Kind      Kind      `db:"kind" json:"kind"`
	Name      string    `db:"name" json:"name"`
	Specialty *string   `db:"specialty" json:"specialty,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
