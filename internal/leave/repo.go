package leave

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"gorm.io/gorm"
)

var errStatusMoved = errors.New("leave request status moved")

const statusTxAttempts = 3

type repository struct {
	db *gorm.DB
}

// NewRepository builds a leave repository bound to the provided DB.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, request *models.LeaveRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		docs := request.Documents
		if err := tx.Omit("Documents", "History").Create(request).Error; err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		return tx.Create(&docs).Error
	})
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.LeaveRequest, error) {
	var request models.LeaveRequest
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindMany(ctx context.Context, filter StoreFilter) ([]models.LeaveRequest, error) {
	query := r.withChildren(r.db.WithContext(ctx)).Model(&models.LeaveRequest{})
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.LeaveType != nil {
		query = query.Where("leave_type = ?", *filter.LeaveType)
	}

	var requests []models.LeaveRequest
	if err := query.Order("submitted_at DESC").Order("id ASC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next enums.LeaveStatus, entry models.LeaveAuditEntry) (bool, error) {
	err := db.RunInTx(ctx, r.db, statusTxAttempts, func(tx *gorm.DB) error {
		res := tx.Model(&models.LeaveRequest{}).
			Where("id = ? AND status = ?", id, expected).
			Updates(map[string]any{
				"status":     next,
				"decided_at": entry.OccurredAt,
				"updated_at": entry.OccurredAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusMoved
		}

		var existing int64
		if err := tx.Model(&models.LeaveAuditEntry{}).
			Where("leave_request_id = ?", id).
			Count(&existing).Error; err != nil {
			return err
		}

		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		entry.LeaveRequestID = id
		entry.Sequence = int(existing) + 1
		return tx.Create(&entry).Error
	})
	if errors.Is(err, errStatusMoved) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *repository) FindPendingEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.LeaveRequest, error) {
	var requests []models.LeaveRequest
	query := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", enums.LeaveStatusPending, cutoff).
		Order("end_date ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		})
}
