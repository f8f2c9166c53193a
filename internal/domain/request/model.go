package request

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusReviewed   Status = "reviewed"
	StatusScheduled  Status = "scheduled"
	StatusPreOp      Status = "pre-op"
	StatusInProgress Status = "in-progress"
	StatusPostOp     Status = "post-op"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusPostponed  Status = "postponed"
)

var validStatuses = map[Status]bool{
	StatusPending: true, StatusReviewed: true, StatusScheduled: true,
	StatusPreOp: true, StatusInProgress: true, StatusPostOp: true,
	StatusCompleted: true, StatusCancelled: true, StatusPostponed: true,
}

func (s Status) Valid() bool { return validStatuses[s] }

type Urgency string

const (
	UrgencyRoutine   Urgency = "routine"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyEmergency Urgency = "emergency"
)

var validUrgencies = map[Urgency]bool{
	UrgencyRoutine: true, UrgencyUrgent: true, UrgencyEmergency: true,
}

func (u Urgency) Valid() bool { return validUrgencies[u] }

// StaffAssignment names the team bound to a scheduled surgery. Stored as a
// jsonb column on the request row.
type StaffAssignment struct {
	LeadSurgeonID      *uuid.UUID  `json:"lead_surgeon_id,omitempty"`
	AssistantIDs       []uuid.UUID `json:"assistant_ids,omitempty"`
	AnesthesiologistID *uuid.UUID  `json:"anesthesiologist_id,omitempty"`
	NurseIDs           []uuid.UUID `json:"nurse_ids,omitempty"`
}

// Schedule carries the slot details the allocator writes onto a request when
// a booking commits.
type Schedule struct {
	Date   string          `json:"date"`
	Start  string          `json:"start"`
	End    string          `json:"end"`
	RoomID uuid.UUID       `json:"room_id"`
	Staff  StaffAssignment `json:"staff"`
}

// SurgeryRequest maps to the surgery_request table. Never deleted, only
// cancelled; status moves exclusively through Transition and MarkScheduled.
type SurgeryRequest struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	PatientID          uuid.UUID       `db:"patient_id" json:"patient_id"`
	RequestingDoctorID uuid.UUID       `db:"requesting_doctor_id" json:"requesting_doctor_id"`
	SurgeryType        string          `db:"surgery_type" json:"surgery_type"`
	Urgency            Urgency         `db:"urgency" json:"urgency"`
	Diagnosis          string          `db:"diagnosis" json:"diagnosis"`
	Status             Status          `db:"status" json:"status"`
	ScheduledDate      *string         `db:"scheduled_date" json:"scheduled_date,omitempty"`
	ScheduledStart     *string         `db:"scheduled_start" json:"scheduled_start,omitempty"`
	ScheduledEnd       *string         `db:"scheduled_end" json:"scheduled_end,omitempty"`
	RoomID             *uuid.UUID      `db:"room_id" json:"room_id,omitempty"`
	AssignedStaff      StaffAssignment `db:"assigned_staff" json:"assigned_staff"`
	PreOpAssessment    *string         `db:"pre_op_assessment" json:"pre_op_assessment,omitempty"`
	RequiredResources  []string        `db:"required_resources" json:"required_resources,omitempty"`
	ConsentObtained    bool            `db:"consent_obtained" json:"consent_obtained"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updated_at"`
}
