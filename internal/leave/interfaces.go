package leave

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// StoreFilter is the subset of filtering pushed down to storage.
type StoreFilter struct {
	StudentID *uuid.UUID
	Status    *enums.LeaveStatus
	LeaveType *enums.LeaveType
}

// Repository persists leave requests and their append-only children.
type Repository interface {
	Create(ctx context.Context, request *models.LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error)
	FindMany(ctx context.Context, filter StoreFilter) ([]models.LeaveRequest, error)
	// UpdateStatus moves id from expected to next and appends entry in one
	// transaction. It returns false when the row is no longer in expected.
	UpdateStatus(ctx context.Context, id uuid.UUID, expected, next enums.LeaveStatus, entry models.LeaveAuditEntry) (bool, error)
	FindPendingEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.LeaveRequest, error)
}

// StudentDirectory resolves the student snapshot stored on each request.
type StudentDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
}

// Notification is a message for one recipient, rendered by the notifier.
type Notification struct {
	StudentID uuid.UUID
	Audience  enums.NotificationAudience
	Kind      enums.NotificationKind
	Payload   NotificationPayload
}

// NotificationPayload is the template data shared by every leave notification.
type NotificationPayload struct {
	RequestID    uuid.UUID           `json:"requestId"`
	StudentName  string              `json:"studentName"`
	LeaveType    enums.LeaveType     `json:"leaveType"`
	StartDate    string              `json:"startDate"`
	EndDate      string              `json:"endDate"`
	Duration     int                 `json:"duration"`
	Status       enums.LeaveStatus   `json:"status"`
	Priority     enums.LeavePriority `json:"priority"`
	ReviewerName string              `json:"reviewerName,omitempty"`
	Comment      string              `json:"comment,omitempty"`
}

// Notifier delivers notifications. Callers never wait on it for their result.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// TransitionRecorder observes lifecycle events, typically for metrics.
type TransitionRecorder interface {
	RecordSubmission(leaveType enums.LeaveType)
	RecordTransition(from, to enums.LeaveStatus)
	RecordConflict(action string)
}

type noopRecorder struct{}

func (noopRecorder) RecordSubmission(enums.LeaveType)                      {}
func (noopRecorder) RecordTransition(enums.LeaveStatus, enums.LeaveStatus) {}
func (noopRecorder) RecordConflict(string)                                 {}
