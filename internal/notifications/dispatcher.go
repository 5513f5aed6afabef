package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/internal/leave"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/pubsub"
	"go.uber.org/multierr"
)

const eventTypeAttribute = "event_type"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg pubsub.Message) (string, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
}

// DispatcherParams wires the notification sinks. Publisher is optional.
type DispatcherParams struct {
	Repo      creator
	Students  studentLookup
	Publisher messagePublisher
	Logger    *logger.Logger
}

// Dispatcher renders leave notifications, stores them in-app and publishes
// them for the outbound email/SMS fan-out.
type Dispatcher struct {
	repo      creator
	students  studentLookup
	publisher messagePublisher
	logg      *logger.Logger
	now       func() time.Time
}

// Recipient is who the outbound channel should reach.
type Recipient struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Envelope is the JSON body published for each notification.
type Envelope struct {
	NotificationID uuid.UUID                  `json:"notificationId"`
	Kind           enums.NotificationKind     `json:"kind"`
	Audience       enums.NotificationAudience `json:"audience"`
	StudentID      uuid.UUID                  `json:"studentId"`
	Recipient      *Recipient                 `json:"recipient,omitempty"`
	Title          string                     `json:"title"`
	Message        string                     `json:"message"`
	Payload        leave.NotificationPayload  `json:"payload"`
	CreatedAt      time.Time                  `json:"createdAt"`
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{
		repo:      params.Repo,
		students:  params.Students,
		publisher: params.Publisher,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// Notify implements leave.Notifier. The in-app row and the publish are
// attempted independently and their errors combined.
func (d *Dispatcher) Notify(ctx context.Context, n leave.Notification) error {
	if !n.Kind.IsValid() {
		return fmt.Errorf("unknown notification kind %q", n.Kind)
	}
	if !n.Audience.IsValid() {
		return fmt.Errorf("unknown notification audience %q", n.Audience)
	}

	title, message := Render(n)
	requestID := n.Payload.RequestID
	record := &models.Notification{
		ID:             uuid.New(),
		StudentID:      n.StudentID,
		Audience:       n.Audience,
		Kind:           n.Kind,
		Title:          title,
		Message:        message,
		LeaveRequestID: &requestID,
		CreatedAt:      d.now().UTC(),
	}

	var errs error
	if err := d.repo.Create(ctx, record); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("store notification: %w", err))
	}
	if d.publisher != nil {
		errs = multierr.Append(errs, d.publish(ctx, record, n))
	}
	if errs == nil {
		logCtx := d.logg.WithFields(ctx, map[string]any{
			"notification_id": record.ID.String(),
			"audience":        string(n.Audience),
		})
		d.logg.Debug(logCtx, "notification dispatched")
	}
	return errs
}

func (d *Dispatcher) publish(ctx context.Context, record *models.Notification, n leave.Notification) error {
	env := Envelope{
		NotificationID: record.ID,
		Kind:           n.Kind,
		Audience:       n.Audience,
		StudentID:      n.StudentID,
		Title:          record.Title,
		Message:        record.Message,
		Payload:        n.Payload,
		CreatedAt:      record.CreatedAt,
	}
	recipient, err := d.recipient(ctx, n)
	if err != nil {
		return err
	}
	env.Recipient = recipient

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	msg := pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			eventTypeAttribute: string(n.Kind),
			"audience":         string(n.Audience),
		},
		OrderingKey: n.StudentID.String(),
	}
	if _, err := d.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (d *Dispatcher) recipient(ctx context.Context, n leave.Notification) (*Recipient, error) {
	if d.students == nil {
		return nil, nil
	}
	student, err := d.students.FindByID(ctx, n.StudentID)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}
	if n.Audience == enums.NotificationAudienceParent {
		if !student.HasEmergencyContact() {
			return nil, errors.New("parent notification requested but no emergency contact on file")
		}
		return &Recipient{
			Name:  student.EmergencyContactName,
			Email: student.EmergencyContactEmail,
			Phone: student.EmergencyContactPhone,
		}, nil
	}
	return &Recipient{Name: student.Name, Email: student.Email, Phone: student.Phone}, nil
}
