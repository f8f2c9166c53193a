package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/otms/otms/internal/domain/request"
)

type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
	PeriodCustom  PeriodType = "custom"
)

var validPeriods = map[PeriodType]bool{
	PeriodDaily: true, PeriodWeekly: true, PeriodMonthly: true, PeriodCustom: true,
}

func (p PeriodType) Valid() bool { return validPeriods[p] }

// Metrics are the aggregate outcome counts of one reporting period.
// Emergency and elective split the completed surgeries by urgency; cancelled
// and postponed count requests that never went ahead. Complications and
// mortality count requests with at least one progress record carrying the
// tag inside the period.
type Metrics struct {
	TotalSurgeries     int `json:"total_surgeries"`
	CompletedSurgeries int `json:"completed_surgeries"`
	EmergencySurgeries int `json:"emergency_surgeries"`
	ElectiveSurgeries  int `json:"elective_surgeries"`
	CancelledSurgeries int `json:"cancelled_surgeries"`
	PostponedSurgeries int `json:"postponed_surgeries"`
	Complications      int `json:"complications"`
	Mortality          int `json:"mortality"`

	ByUrgency map[request.Urgency]int `json:"by_urgency"`
}

// SurgerySummary is one line of a report: the outcome of a single surgery
// request in the period.
type SurgerySummary struct {
	RequestID    uuid.UUID       `json:"request_id"`
	PatientID    uuid.UUID       `json:"patient_id"`
	SurgeryType  string          `json:"surgery_type"`
	Urgency      request.Urgency `json:"urgency"`
	Outcome      request.Status  `json:"outcome"`
	FinishedAt   time.Time       `json:"finished_at"`
	Complication bool            `json:"complication"`
	Mortality    bool            `json:"mortality"`
}

// OTReport is an immutable snapshot. Refreshing a period means generating a
// new report row, never patching an old one. Maps to the ot_report table.
type OTReport struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	PeriodType  PeriodType       `db:"period_type" json:"period_type"`
	StartDate   string           `db:"start_date" json:"start_date"`
	EndDate     string           `db:"end_date" json:"end_date"`
	Metrics     Metrics          `db:"metrics" json:"metrics"`
	Summaries   []SurgerySummary `db:"summaries" json:"summaries"`
	GeneratedAt time.Time        `db:"generated_at" json:"generated_at"`
}
