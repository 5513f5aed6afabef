package leave

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"go.uber.org/multierr"
)

const (
	defaultNotifyTimeout = 5 * time.Second
	defaultExpiryBatch   = 200
)

// Service exposes the leave request lifecycle.
type Service interface {
	Submit(ctx context.Context, actor Actor, input SubmitInput) (*LeaveRequest, error)
	Get(ctx context.Context, actor Actor, id string) (*LeaveRequest, error)
	List(ctx context.Context, actor Actor, input ListInput) (*ListResult, error)
	Approve(ctx context.Context, actor Actor, id string, comment *string) (*LeaveRequest, error)
	Reject(ctx context.Context, actor Actor, id string, comment *string) (*LeaveRequest, error)
	BulkApprove(ctx context.Context, actor Actor, ids []string, comment *string) (*BulkResult, error)
	BulkReject(ctx context.Context, actor Actor, ids []string, comment *string) (*BulkResult, error)
	ExpireOverdue(ctx context.Context, now time.Time) (ExpirySummary, error)
	Statistics(ctx context.Context, actor Actor, filter FilterSpec) (*Statistics, error)
	// WaitForNotifications blocks until in-flight notifications finish or ctx ends.
	WaitForNotifications(ctx context.Context) error
}

// ServiceParams wires the collaborators. Notifier and Recorder are optional.
type ServiceParams struct {
	Repo          Repository
	Students      StudentDirectory
	Notifier      Notifier
	Recorder      TransitionRecorder
	Logger        *logger.Logger
	NotifyTimeout time.Duration
	ExpiryBatch   int
	Now           func() time.Time
}

type service struct {
	repo          Repository
	students      StudentDirectory
	notifier      Notifier
	recorder      TransitionRecorder
	logg          *logger.Logger
	notifyTimeout time.Duration
	expiryBatch   int
	now           func() time.Time
	inflight      sync.WaitGroup
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("leave repository required")
	}
	if params.Students == nil {
		return nil, fmt.Errorf("student directory required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		repo:          params.Repo,
		students:      params.Students,
		notifier:      params.Notifier,
		recorder:      params.Recorder,
		logg:          params.Logger,
		notifyTimeout: params.NotifyTimeout,
		expiryBatch:   params.ExpiryBatch,
		now:           params.Now,
	}
	if svc.recorder == nil {
		svc.recorder = noopRecorder{}
	}
	if svc.notifyTimeout <= 0 {
		svc.notifyTimeout = defaultNotifyTimeout
	}
	if svc.expiryBatch <= 0 {
		svc.expiryBatch = defaultExpiryBatch
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *service) Submit(ctx context.Context, actor Actor, input SubmitInput) (*LeaveRequest, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	submission, err := validateSubmission(actor, input)
	if err != nil {
		return nil, err
	}
	if actor.Role == enums.UserRoleStudent {
		if actor.StudentID == nil || *actor.StudentID != submission.studentID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "students can only submit their own leave requests")
		}
	}

	student, err := s.students.FindByID(ctx, submission.studentID)
	if err != nil {
		return nil, db.Translate(err, "student")
	}

	now := s.now().UTC()
	record := models.LeaveRequest{
		ID:               uuid.New(),
		StudentID:        student.ID,
		StudentName:      student.Name,
		Department:       student.Department,
		RoomNumber:       student.RoomNumber,
		ContactNumber:    student.Phone,
		EmergencyContact: emergencyContactLine(student),
		LeaveType:        submission.leaveType,
		Reason:           submission.reason,
		StartDate:        submission.start,
		EndDate:          submission.end,
		DurationDays:     DurationDays(submission.start, submission.end),
		Status:           enums.LeaveStatusPending,
		Priority:         submission.priority,
		SubmittedAt:      now,
	}
	for i, doc := range submission.documents {
		record.Documents = append(record.Documents, models.LeaveDocument{
			ID:             uuid.New(),
			LeaveRequestID: record.ID,
			Position:       i,
			Name:           doc.Name,
			URL:            doc.URL,
			MediaType:      doc.MediaType,
		})
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create leave request")
	}
	s.recorder.RecordSubmission(record.LeaveType)

	out := fromModel(record)
	s.logg.Info(s.logg.WithLeaveRequestID(ctx, out.ID.String()), "leave request submitted")
	s.dispatch(ctx, out, enums.NotificationKindLeaveSubmitted, "", nil)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id string) (*LeaveRequest, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(actor, record.StudentID); err != nil {
		return nil, err
	}
	out := fromModel(*record)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor Actor, input ListInput) (*ListResult, error) {
	if input.Limit < 0 || input.Offset < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit and offset must not be negative")
	}
	working, err := s.workingSet(ctx, actor, input.Filter)
	if err != nil {
		return nil, err
	}

	ordered := Query(working, input.Filter, input.Sort)
	total := len(ordered)
	if input.Offset >= total {
		ordered = []LeaveRequest{}
	} else {
		ordered = ordered[input.Offset:]
		if input.Limit > 0 && input.Limit < len(ordered) {
			ordered = ordered[:input.Limit]
		}
	}
	return &ListResult{Items: ordered, Total: total}, nil
}

func (s *service) Approve(ctx context.Context, actor Actor, id string, comment *string) (*LeaveRequest, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	clean, err := validateComment(comment)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, actor, id, enums.LeaveStatusApproved, clean)
}

func (s *service) Reject(ctx context.Context, actor Actor, id string, comment *string) (*LeaveRequest, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	clean, err := validateComment(comment)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, actor, id, enums.LeaveStatusRejected, clean)
}

func (s *service) BulkApprove(ctx context.Context, actor Actor, ids []string, comment *string) (*BulkResult, error) {
	return s.bulkDecide(ctx, actor, ids, enums.LeaveStatusApproved, comment)
}

func (s *service) BulkReject(ctx context.Context, actor Actor, ids []string, comment *string) (*BulkResult, error) {
	return s.bulkDecide(ctx, actor, ids, enums.LeaveStatusRejected, comment)
}

func (s *service) Statistics(ctx context.Context, actor Actor, filter FilterSpec) (*Statistics, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	working, err := s.workingSet(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	stats := ComputeStatistics(Query(working, filter, SortSpec{}))
	return &stats, nil
}

func (s *service) WaitForNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// bulkDecide applies one transition per id. Items fail independently; the
// batch as a whole only fails on permission or input errors.
func (s *service) bulkDecide(ctx context.Context, actor Actor, ids []string, next enums.LeaveStatus, comment *string) (*BulkResult, error) {
	if err := requireReviewer(actor); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one leave request id is required")
	}
	if len(ids) > maxBulkSize {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d leave requests per batch", maxBulkSize)
	}
	clean, err := validateComment(comment)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Items: make([]BulkItemResult, 0, len(ids))}
	for _, raw := range ids {
		item := BulkItemResult{ID: raw}
		updated, err := s.decide(ctx, actor, raw, next, clean)
		if err != nil {
			item.Code = string(pkgerrors.CodeOf(err))
			item.Message = publicMessage(err)
			result.Failed++
			if !isExpectedItemFailure(err) {
				s.logg.Error(s.logg.WithLeaveRequestID(ctx, raw), "bulk leave decision failed", err)
			}
		} else {
			item.OK = true
			item.Status = updated.Status
			result.Succeeded++
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

func (s *service) decide(ctx context.Context, actor Actor, rawID string, next enums.LeaveStatus, comment *string) (*LeaveRequest, error) {
	action := actionFor(next)
	record, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if record.Status != enums.LeaveStatusPending {
		s.recorder.RecordConflict(action)
		return nil, conflictError(record.ID, record.Status)
	}

	entry := models.LeaveAuditEntry{
		ID:             uuid.New(),
		LeaveRequestID: record.ID,
		Action:         action,
		ActorID:        actor.UserID.String(),
		ActorName:      actor.DisplayName,
		Comment:        comment,
		OccurredAt:     s.now().UTC(),
	}
	ok, err := s.repo.UpdateStatus(ctx, record.ID, enums.LeaveStatusPending, next, entry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update leave request status")
	}
	if !ok {
		s.recorder.RecordConflict(action)
		return nil, conflictError(record.ID, "")
	}
	s.recorder.RecordTransition(enums.LeaveStatusPending, next)

	record.Status = next
	record.History = append(record.History, entry)
	out := fromModel(*record)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"leave_request_id": out.ID.String(),
		"status":           string(next),
		"reviewer_id":      entry.ActorID,
	})
	s.logg.Info(logCtx, "leave request decided")

	reviewerComment := ""
	if comment != nil {
		reviewerComment = *comment
	}
	s.dispatch(ctx, out, notificationKindFor(next), actor.DisplayName, &reviewerComment)
	return &out, nil
}

func (s *service) load(ctx context.Context, rawID string) (*models.LeaveRequest, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "leave request not found")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, db.Translate(err, "leave request")
	}
	return record, nil
}

// workingSet loads the requests visible to actor, pushing the exact-match
// filters down to storage. Query re-applies them so the result is the same either way.
func (s *service) workingSet(ctx context.Context, actor Actor, filter FilterSpec) ([]LeaveRequest, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	store := StoreFilter{Status: filter.Status, LeaveType: filter.LeaveType}
	if !actor.Role.CanReview() {
		if actor.StudentID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is not linked to a student")
		}
		store.StudentID = actor.StudentID
	}
	rows, err := s.repo.FindMany(ctx, store)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leave requests")
	}
	return fromModels(rows), nil
}

// ExpireOverdue moves pending requests whose end date has fully passed to
// expired. Running it again is a no-op; requests a reviewer decided
// in the meantime are counted as skipped.
func (s *service) ExpireOverdue(ctx context.Context, now time.Time) (ExpirySummary, error) {
	var (
		summary ExpirySummary
		errs    error
	)
	cutoff := normalizeDate(now)
	occurredAt := now.UTC()

	for {
		batch, err := s.repo.FindPendingEndedBefore(ctx, cutoff, s.expiryBatch)
		if err != nil {
			return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load overdue leave requests")
		}

		progressed := 0
		for i := range batch {
			record := batch[i]
			summary.Scanned++

			entry := models.LeaveAuditEntry{
				ID:             uuid.New(),
				LeaveRequestID: record.ID,
				Action:         ActionExpired,
				ActorID:        SystemActor,
				ActorName:      SystemActor,
				OccurredAt:     occurredAt,
			}
			ok, err := s.repo.UpdateStatus(ctx, record.ID, enums.LeaveStatusPending, enums.LeaveStatusExpired, entry)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("expire leave request %s: %w", record.ID, err))
				summary.Skipped++
				continue
			}
			if !ok {
				summary.Skipped++
				continue
			}
			progressed++
			summary.Expired++
			s.recorder.RecordTransition(enums.LeaveStatusPending, enums.LeaveStatusExpired)

			record.Status = enums.LeaveStatusExpired
			record.History = append(record.History, entry)
			s.dispatch(ctx, fromModel(record), enums.NotificationKindLeaveExpired, "", nil)
		}

		if len(batch) < s.expiryBatch || progressed == 0 {
			break
		}
	}

	if errs != nil {
		return summary, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "expire overdue leave requests")
	}
	return summary, nil
}

func authorizeRead(actor Actor, studentID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role.CanReview() {
		return nil
	}
	if actor.StudentID == nil || *actor.StudentID != studentID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "leave request belongs to another student")
	}
	return nil
}

func conflictError(id uuid.UUID, current enums.LeaveStatus) error {
	details := map[string]any{"id": id.String()}
	if current != "" {
		details["status"] = string(current)
		return pkgerrors.Newf(pkgerrors.CodeConflict, "leave request is already %s", current).WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "leave request was decided concurrently").WithDetails(details)
}

func actionFor(next enums.LeaveStatus) string {
	switch next {
	case enums.LeaveStatusApproved:
		return ActionApproved
	case enums.LeaveStatusRejected:
		return ActionRejected
	default:
		return ActionExpired
	}
}

func notificationKindFor(status enums.LeaveStatus) enums.NotificationKind {
	switch status {
	case enums.LeaveStatusApproved:
		return enums.NotificationKindLeaveApproved
	case enums.LeaveStatusRejected:
		return enums.NotificationKindLeaveRejected
	case enums.LeaveStatusExpired:
		return enums.NotificationKindLeaveExpired
	default:
		return enums.NotificationKindLeaveSubmitted
	}
}

func publicMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return pkgerrors.MetadataFor(pkgerrors.CodeInternal).PublicMessage
}

func isExpectedItemFailure(err error) bool {
	switch pkgerrors.CodeOf(err) {
	case pkgerrors.CodeNotFound, pkgerrors.CodeConflict:
		return true
	default:
		return false
	}
}

func emergencyContactLine(student *models.Student) string {
	name := strings.TrimSpace(student.EmergencyContactName)
	phone := strings.TrimSpace(student.EmergencyContactPhone)
	switch {
	case name != "" && phone != "":
		return name + " (" + phone + ")"
	case phone != "":
		return phone
	default:
		return name
	}
}
