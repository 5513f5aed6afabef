package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/pagination"
)

// Service defines the student's in-app notification inbox.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, studentID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, studentID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	StudentID  uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// Item is the transport shape of a notification.
type Item struct {
	ID             uuid.UUID              `json:"id"`
	Kind           enums.NotificationKind `json:"kind"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	LeaveRequestID *uuid.UUID             `json:"leaveRequestId,omitempty"`
	Read           bool                   `json:"read"`
	ReadAt         *time.Time             `json:"readAt,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// ListResult wraps returned notifications and the cursor for the next page.
// Unread counts the whole inbox, not just this page.
type ListResult struct {
	Items  []Item `json:"items"`
	Cursor string `json:"cursor,omitempty"`
	Unread int64  `json:"unread"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.StudentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "notifications are only available to student accounts")
	}

	query := listNotificationsParams{
		StudentID:  params.StudentID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	unread, err := s.repo.CountUnread(ctx, params.StudentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}

	items := make([]Item, 0, len(rows))
	for i := range rows {
		items = append(items, toItem(&rows[i]))
	}
	return &ListResult{
		Items:  items,
		Cursor: pagination.EncodeNext(next),
		Unread: unread,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, studentID, notificationID uuid.UUID) error {
	if studentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "notifications are only available to student accounts")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}

	result, err := s.repo.MarkRead(ctx, studentID, notificationID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, studentID uuid.UUID) (int64, error) {
	if studentID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeForbidden, "notifications are only available to student accounts")
	}

	count, err := s.repo.MarkAllRead(ctx, studentID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func toItem(n *models.Notification) Item {
	return Item{
		ID:             n.ID,
		Kind:           n.Kind,
		Title:          n.Title,
		Message:        n.Message,
		LeaveRequestID: n.LeaveRequestID,
		Read:           n.ReadAt != nil,
		ReadAt:         n.ReadAt,
		CreatedAt:      n.CreatedAt,
	}
}
