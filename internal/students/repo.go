package students

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes the student directory persistence.
type Repository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Student, *pagination.Cursor, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// updatableColumns is every column a directory edit may rewrite, zero
// values included.
var updatableColumns = []string{
	"student_code", "name", "email", "phone", "department", "year",
	"room_number", "room_block", "attendance_status", "parent_contact",
	"emergency_contact_name", "emergency_contact_relationship",
	"emergency_contact_phone", "emergency_contact_email",
	"join_date", "updated_at",
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the student directory to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

// Update rewrites the stored row. A missing row is gorm.ErrRecordNotFound.
func (r *repository) Update(ctx context.Context, student *models.Student) error {
	res := r.db.WithContext(ctx).Model(student).Select(updatableColumns).Updates(student)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the row. Leave requests and accounts restrict the delete.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Student{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Student, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).Model(&models.Student{})
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.RoomBlock != "" {
		query = query.Where("room_block = ?", filter.RoomBlock)
	}
	if filter.AttendanceStatus != nil {
		query = query.Where("attendance_status = ?", *filter.AttendanceStatus)
	}
	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		like := "%" + escapeLike(term) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(student_code) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'",
			like, like, like,
		)
	}

	var rows []models.Student
	if err := query.Scopes(pagination.Keyset(cursor, limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Trim(rows, limit, func(s models.Student) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	})
	return page, next, nil
}

func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
