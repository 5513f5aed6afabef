package leave

import (
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

const (
	ActionApproved = "Approved"
	ActionRejected = "Rejected"
	ActionExpired  = "Expired"

	// SystemActor is recorded as the actor of time-based transitions.
	SystemActor = "system"

	dateLayout = "2006-01-02"
)

// Actor is the authenticated caller as resolved by the identity layer.
type Actor struct {
	UserID      uuid.UUID
	DisplayName string
	Role        enums.UserRole
	StudentID   *uuid.UUID
}

// Document is an attachment reference. Storage is handled elsewhere.
type Document struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	MediaType string `json:"type"`
}

// AuditEntry is one decision event in a request's approval history.
type AuditEntry struct {
	Action  string    `json:"action"`
	By      string    `json:"by"`
	ByName  string    `json:"byName"`
	At      time.Time `json:"at"`
	Comment *string   `json:"comment,omitempty"`
}

// LeaveRequest is the engine's view of a request, independent of storage.
type LeaveRequest struct {
	ID               uuid.UUID           `json:"id"`
	StudentID        uuid.UUID           `json:"studentId"`
	StudentName      string              `json:"studentName"`
	Department       string              `json:"department"`
	RoomNumber       string              `json:"roomNumber"`
	ContactNumber    string              `json:"contactNumber"`
	EmergencyContact string              `json:"emergencyContact"`
	LeaveType        enums.LeaveType     `json:"leaveType"`
	StartDate        time.Time           `json:"startDate"`
	EndDate          time.Time           `json:"endDate"`
	Duration         int                 `json:"duration"`
	Reason           string              `json:"reason"`
	Status           enums.LeaveStatus   `json:"status"`
	Priority         enums.LeavePriority `json:"priority"`
	SubmittedAt      time.Time           `json:"submittedAt"`
	Documents        []Document          `json:"documents"`
	ApprovalHistory  []AuditEntry        `json:"approvalHistory"`
}

// BulkItemResult reports the outcome of one id within a bulk decision.
type BulkItemResult struct {
	ID      string            `json:"id"`
	OK      bool              `json:"ok"`
	Status  enums.LeaveStatus `json:"status,omitempty"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
}

// BulkResult is the per-item outcome of BulkApprove or BulkReject.
type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}

// ExpirySummary describes one expiry sweep.
type ExpirySummary struct {
	Scanned int `json:"scanned"`
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
}

// ListInput scopes a list call. Limit 0 returns every match.
type ListInput struct {
	Filter FilterSpec
	Sort   SortSpec
	Limit  int
	Offset int
}

// ListResult carries one page of the ordered result and the full match count.
type ListResult struct {
	Items []LeaveRequest `json:"items"`
	Total int            `json:"total"`
}

func fromModel(m models.LeaveRequest) LeaveRequest {
	out := LeaveRequest{
		ID:               m.ID,
		StudentID:        m.StudentID,
		StudentName:      m.StudentName,
		Department:       m.Department,
		RoomNumber:       m.RoomNumber,
		ContactNumber:    m.ContactNumber,
		EmergencyContact: m.EmergencyContact,
		LeaveType:        m.LeaveType,
		StartDate:        normalizeDate(m.StartDate),
		EndDate:          normalizeDate(m.EndDate),
		Duration:         m.DurationDays,
		Reason:           m.Reason,
		Status:           m.Status,
		Priority:         m.Priority,
		SubmittedAt:      m.SubmittedAt.UTC(),
		Documents:        make([]Document, 0, len(m.Documents)),
		ApprovalHistory:  make([]AuditEntry, 0, len(m.History)),
	}
	for _, doc := range m.Documents {
		out.Documents = append(out.Documents, Document{Name: doc.Name, URL: doc.URL, MediaType: doc.MediaType})
	}
	for _, entry := range m.History {
		out.ApprovalHistory = append(out.ApprovalHistory, AuditEntry{
			Action:  entry.Action,
			By:      entry.ActorID,
			ByName:  entry.ActorName,
			At:      entry.OccurredAt.UTC(),
			Comment: entry.Comment,
		})
	}
	return out
}

func fromModels(rows []models.LeaveRequest) []LeaveRequest {
	out := make([]LeaveRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromModel(row))
	}
	return out
}

// normalizeDate truncates to midnight UTC so day arithmetic is exact.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// DurationDays counts calendar days between start and end, both inclusive.
// It works on Unix seconds since time.Duration saturates past ~292 years.
func DurationDays(start, end time.Time) int {
	return int((normalizeDate(end).Unix()-normalizeDate(start).Unix())/secondsPerDay) + 1
}
