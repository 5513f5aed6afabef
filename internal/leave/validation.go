package leave

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
)

const (
	maxReasonLength  = 1000
	maxCommentLength = 500
	maxDocuments     = 10
	maxBulkSize      = 100
)

// SubmitInput is the raw submission as received from a client.
type SubmitInput struct {
	StudentID string
	LeaveType string
	Priority  string
	StartDate string
	EndDate   string
	Reason    string
	Documents []Document
}

type validatedSubmission struct {
	studentID uuid.UUID
	leaveType enums.LeaveType
	priority  enums.LeavePriority
	start     time.Time
	end       time.Time
	reason    string
	documents []Document
}

// fieldErrors accumulates per-field messages and turns them into one validation error.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid leave request").WithDetails(map[string]string(f))
}

func validateSubmission(actor Actor, in SubmitInput) (validatedSubmission, error) {
	var out validatedSubmission
	problems := fieldErrors{}

	rawStudent := strings.TrimSpace(in.StudentID)
	switch {
	case rawStudent == "" && actor.StudentID != nil:
		out.studentID = *actor.StudentID
	case rawStudent == "":
		problems.add("studentId", "is required")
	default:
		id, err := uuid.Parse(rawStudent)
		if err != nil {
			problems.add("studentId", "must be a valid id")
		}
		out.studentID = id
	}

	lt, err := enums.ParseLeaveType(in.LeaveType)
	if err != nil {
		problems.add("leaveType", "must be one of sick, emergency, personal, home, medical")
	}
	out.leaveType = lt

	priority := in.Priority
	if strings.TrimSpace(priority) == "" {
		priority = string(enums.LeavePriorityMedium)
	}
	p, err := enums.ParseLeavePriority(priority)
	if err != nil {
		problems.add("priority", "must be one of low, medium, high, urgent")
	}
	out.priority = p

	start, startErr := parseDate(in.StartDate)
	if startErr != nil {
		problems.add("startDate", "must be a date in YYYY-MM-DD format")
	}
	end, endErr := parseDate(in.EndDate)
	if endErr != nil {
		problems.add("endDate", "must be a date in YYYY-MM-DD format")
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		problems.add("endDate", "must not be before startDate")
	}
	out.start, out.end = start, end

	out.reason = strings.TrimSpace(in.Reason)
	switch {
	case out.reason == "":
		problems.add("reason", "is required")
	case len([]rune(out.reason)) > maxReasonLength:
		problems.add("reason", "is too long")
	}

	if len(in.Documents) > maxDocuments {
		problems.add("documents", "too many documents")
	}
	for _, doc := range in.Documents {
		clean := Document{
			Name:      strings.TrimSpace(doc.Name),
			URL:       strings.TrimSpace(doc.URL),
			MediaType: strings.TrimSpace(doc.MediaType),
		}
		if clean.Name == "" || clean.MediaType == "" {
			problems.add("documents", "each document needs a name and type")
			continue
		}
		if u, err := url.Parse(clean.URL); err != nil || clean.URL == "" || (u.Scheme == "" && !strings.HasPrefix(clean.URL, "/")) {
			problems.add("documents", "each document needs a valid url")
			continue
		}
		out.documents = append(out.documents, clean)
	}

	return out, problems.err()
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return normalizeDate(t), nil
}

func validateComment(comment *string) (*string, error) {
	if comment == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil, nil
	}
	if len([]rune(trimmed)) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment is too long").
			WithDetails(map[string]string{"comment": "is too long"})
	}
	return &trimmed, nil
}

func requireReviewer(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.CanReview() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only staff and administrators can review leave requests")
	}
	return nil
}
