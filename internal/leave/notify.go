package leave

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// dispatch sends notifications in the background. The caller's result never
// depends on delivery: failures are logged and dropped.
func (s *service) dispatch(ctx context.Context, req LeaveRequest, kind enums.NotificationKind, reviewer string, comment *string) {
	if s.notifier == nil {
		return
	}

	payload := NotificationPayload{
		RequestID:    req.ID,
		StudentName:  req.StudentName,
		LeaveType:    req.LeaveType,
		StartDate:    req.StartDate.Format(dateLayout),
		EndDate:      req.EndDate.Format(dateLayout),
		Duration:     req.Duration,
		Status:       req.Status,
		Priority:     req.Priority,
		ReviewerName: reviewer,
	}
	if comment != nil {
		payload.Comment = *comment
	}

	logCtx := s.logg.WithFields(context.WithoutCancel(ctx), map[string]any{
		"leave_request_id":  req.ID.String(),
		"notification_kind": string(kind),
	})

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logg.Error(logCtx, "leave notification panicked", fmt.Errorf("%v", r))
			}
		}()

		nctx, cancel := context.WithTimeout(logCtx, s.notifyTimeout)
		defer cancel()

		audiences := []enums.NotificationAudience{enums.NotificationAudienceStudent}
		student, err := s.students.FindByID(nctx, req.StudentID)
		if err != nil {
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "parent lookup for leave notification failed")
		} else if student.ParentContact && student.HasEmergencyContact() {
			audiences = append(audiences, enums.NotificationAudienceParent)
		}

		for _, audience := range audiences {
			err := s.notifier.Notify(nctx, Notification{
				StudentID: req.StudentID,
				Audience:  audience,
				Kind:      kind,
				Payload:   payload,
			})
			if err != nil {
				warnCtx := s.logg.WithFields(logCtx, map[string]any{
					"audience": string(audience),
					"error":    err.Error(),
				})
				s.logg.Warn(warnCtx, "leave notification failed")
			}
		}
	}()
}
