package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// Notification stores in-app notifications addressed to a student or their parent.
type Notification struct {
	ID             uuid.UUID                  `gorm:"type:uuid;primaryKey"`
	StudentID      uuid.UUID                  `gorm:"column:student_id;type:uuid;not null"`
	Audience       enums.NotificationAudience `gorm:"column:audience;type:text;not null"`
	Kind           enums.NotificationKind     `gorm:"column:kind;type:text;not null"`
	Title          string                     `gorm:"type:text;not null"`
	Message        string                     `gorm:"type:text;not null"`
	LeaveRequestID *uuid.UUID                 `gorm:"column:leave_request_id;type:uuid"`
	ReadAt         *time.Time                 `gorm:"type:timestamptz"`
	CreatedAt      time.Time                  `gorm:"type:timestamptz"`
}
