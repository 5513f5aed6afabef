package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// LeaveRequest is a student's application to be away from the hostel.
// The student snapshot columns are captured at submission time.
type LeaveRequest struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	StudentID uuid.UUID `gorm:"column:student_id;type:uuid;not null;index"`

	StudentName      string `gorm:"column:student_name;not null"`
	Department       string `gorm:"column:department;not null"`
	RoomNumber       string `gorm:"column:room_number;not null"`
	ContactNumber    string `gorm:"column:contact_number;not null"`
	EmergencyContact string `gorm:"column:emergency_contact"`

	LeaveType    enums.LeaveType     `gorm:"column:leave_type;type:text;not null"`
	Reason       string              `gorm:"column:reason;type:text;not null"`
	StartDate    time.Time           `gorm:"column:start_date;type:date;not null"`
	EndDate      time.Time           `gorm:"column:end_date;type:date;not null"`
	DurationDays int                 `gorm:"column:duration_days;not null"`
	Status       enums.LeaveStatus   `gorm:"column:status;type:text;not null;index"`
	Priority     enums.LeavePriority `gorm:"column:priority;type:text;not null"`
	SubmittedAt  time.Time           `gorm:"column:submitted_at;not null"`
	DecidedAt    *time.Time          `gorm:"column:decided_at"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Documents []LeaveDocument   `gorm:"foreignKey:LeaveRequestID"`
	History   []LeaveAuditEntry `gorm:"foreignKey:LeaveRequestID"`
}

// LeaveDocument references an uploaded attachment. Rows are never updated.
type LeaveDocument struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID `gorm:"column:leave_request_id;type:uuid;not null;index"`
	Position       int       `gorm:"column:position;not null"`
	Name           string    `gorm:"column:name;not null"`
	URL            string    `gorm:"column:url;not null"`
	MediaType      string    `gorm:"column:media_type;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

// LeaveAuditEntry is one append-only decision event.
type LeaveAuditEntry struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	LeaveRequestID uuid.UUID `gorm:"column:leave_request_id;type:uuid;not null;index"`
	Sequence       int       `gorm:"column:sequence;not null"`
	Action         string    `gorm:"column:action;not null"`
	ActorID        string    `gorm:"column:actor_id;not null"`
	ActorName      string    `gorm:"column:actor_name;not null"`
	Comment        *string   `gorm:"column:comment;type:text"`
	OccurredAt     time.Time `gorm:"column:occurred_at;not null"`
}
