package students

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/pagination"
)

// Service manages the hostel's student directory.
type Service interface {
	Create(ctx context.Context, input CreateStudentInput) (*StudentDTO, error)
	Get(ctx context.Context, id string) (*StudentDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[StudentDTO], error)
	Update(ctx context.Context, id string, patch UpdateStudentInput) (*StudentDTO, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService builds the student directory service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("students repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		logg:     logg,
		validate: newValidator(),
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateStudentInput) (*StudentDTO, error) {
	now := s.now().UTC()
	record, err := s.prepare(ctx, input, now)
	if err != nil {
		return nil, err
	}
	record.ID = uuid.New()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, writeError(err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"student_id": record.ID, "student_code": record.StudentCode})
	s.logg.Info(logCtx, "student registered")
	return FromModel(record), nil
}

// Update merges patch onto the stored student and revalidates the result.
func (s *service) Update(ctx context.Context, id string, patch UpdateStudentInput) (*StudentDTO, error) {
	studentID, err := parseStudentID(id)
	if err != nil {
		return nil, err
	}
	if patch.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	current, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		return nil, db.Translate(err, "student")
	}

	merged := inputFromModel(current)
	patch.applyTo(&merged)
	now := s.now().UTC()
	record, err := s.prepare(ctx, merged, now)
	if err != nil {
		return nil, err
	}
	record.ID = current.ID
	record.LastActivityAt = current.LastActivityAt
	record.CreatedAt = current.CreatedAt
	record.UpdatedAt = now

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, writeError(err)
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"student_id": record.ID, "attendance_status": string(record.AttendanceStatus)})
	s.logg.Info(logCtx, "student updated")
	return FromModel(record), nil
}

// Delete removes a student with no leave history or account.
func (s *service) Delete(ctx context.Context, id string) error {
	studentID, err := parseStudentID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, studentID); err != nil {
		return db.TranslateDelete(err, "student")
	}
	s.logg.Info(s.logg.WithField(ctx, "student_id", studentID), "student removed")
	return nil
}

// prepare normalizes and validates input into an unsaved record. now
// supplies the default join date.
func (s *service) prepare(ctx context.Context, input CreateStudentInput, now time.Time) (*models.Student, error) {
	input = normalizeInput(input)
	if err := s.validate.StructCtx(ctx, input); err != nil {
		return nil, validationError(err)
	}

	attendance := enums.AttendanceStatusPresent
	if input.AttendanceStatus != "" {
		parsed, err := enums.ParseAttendanceStatus(input.AttendanceStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid student").
				WithDetails(map[string]string{"attendanceStatus": "must be one of present, absent, late, on-leave"})
		}
		attendance = parsed
	}

	joinDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if input.JoinDate != "" {
		parsed, err := time.Parse(joinDateLayout, input.JoinDate)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid student").
				WithDetails(map[string]string{"joinDate": "must be a YYYY-MM-DD date"})
		}
		joinDate = parsed
	}

	record := &models.Student{
		StudentCode:      input.StudentCode,
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		Department:       input.Department,
		Year:             input.Year,
		RoomNumber:       input.RoomNumber,
		RoomBlock:        input.RoomBlock,
		AttendanceStatus: attendance,
		ParentContact:    input.ParentContact,
		JoinDate:         joinDate,
	}
	if ec := input.EmergencyContact; ec != nil {
		record.EmergencyContactName = ec.Name
		record.EmergencyContactRelationship = ec.Relationship
		record.EmergencyContactPhone = ec.Phone
		record.EmergencyContactEmail = ec.Email
	}
	return record, nil
}

func writeError(err error) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.New(pkgerrors.CodeConflict, "student id or email already registered")
	}
	return db.Translate(err, "student")
}

func parseStudentID(id string) (uuid.UUID, error) {
	studentID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "student not found")
	}
	return studentID, nil
}

func (s *service) Get(ctx context.Context, id string) (*StudentDTO, error) {
	studentID, err := parseStudentID(id)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		return nil, db.Translate(err, "student")
	}
	return FromModel(record), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[StudentDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Department = strings.TrimSpace(filter.Department)
	filter.RoomBlock = strings.TrimSpace(filter.RoomBlock)

	rows, next, err := s.repo.List(ctx, filter, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list students")
	}
	items := make([]StudentDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &pagination.Page[StudentDTO]{Items: items, NextCursor: pagination.EncodeNext(next)}, nil
}

func normalizeInput(in CreateStudentInput) CreateStudentInput {
	in.StudentCode = strings.TrimSpace(in.StudentCode)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Department = strings.TrimSpace(in.Department)
	in.RoomNumber = strings.TrimSpace(in.RoomNumber)
	in.RoomBlock = strings.TrimSpace(in.RoomBlock)
	in.AttendanceStatus = strings.TrimSpace(in.AttendanceStatus)
	in.JoinDate = strings.TrimSpace(in.JoinDate)
	return in
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid student")
	}
	details := map[string]string{}
	for _, fe := range verrs {
		details[jsonPath(fe.Namespace())] = fe.Tag()
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid student").WithDetails(details)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// jsonPath drops the root struct name: "CreateStudentInput.emergencyContact.phone" -> "emergencyContact.phone".
func jsonPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
