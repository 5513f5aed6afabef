package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
CREATE TABLE notifications (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL,
  audience TEXT NOT NULL,
  kind TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  leave_request_id TEXT,
  read_at DATETIME,
  created_at DATETIME NOT NULL
);`).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedNotification(t *testing.T, repo Repository, studentID uuid.UUID, audience enums.NotificationAudience, createdAt time.Time, readAt *time.Time) models.Notification {
	t.Helper()
	n := models.Notification{
		ID:        uuid.New(),
		StudentID: studentID,
		Audience:  audience,
		Kind:      enums.NotificationKindLeaveSubmitted,
		Title:     "Leave request submitted",
		Message:   "msg",
		ReadAt:    readAt,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), &n))
	return n
}

func TestRepositoryListPagesStudentInbox(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	ctx := context.Background()
	studentID := uuid.New()
	base := time.Date(2025, 11, 1, 8, 0, 0, 0, time.UTC)

	var seeded []models.Notification
	for i := 0; i < 3; i++ {
		seeded = append(seeded, seedNotification(t, repo, studentID, enums.NotificationAudienceStudent, base.Add(time.Duration(i)*time.Hour), nil))
	}
	seedNotification(t, repo, studentID, enums.NotificationAudienceParent, base.Add(5*time.Hour), nil)
	seedNotification(t, repo, uuid.New(), enums.NotificationAudienceStudent, base.Add(6*time.Hour), nil)

	page, next, err := repo.List(ctx, listNotificationsParams{StudentID: studentID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, seeded[2].ID, page[0].ID)
	assert.Equal(t, seeded[1].ID, page[1].ID)
	require.NotNil(t, next)

	page, next, err = repo.List(ctx, listNotificationsParams{StudentID: studentID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, seeded[0].ID, page[0].ID)
	assert.Nil(t, next)
}

func TestRepositoryMarkReadAndCleanup(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	ctx := context.Background()
	studentID := uuid.New()
	old := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2025, 11, 12, 9, 0, 0, 0, time.UTC)

	a := seedNotification(t, repo, studentID, enums.NotificationAudienceStudent, old, nil)
	b := seedNotification(t, repo, studentID, enums.NotificationAudienceStudent, old, nil)
	parent := seedNotification(t, repo, studentID, enums.NotificationAudienceParent, old, nil)
	fresh := seedNotification(t, repo, studentID, enums.NotificationAudienceStudent, now, nil)

	res, err := repo.MarkRead(ctx, studentID, a.ID, now)
	require.NoError(t, err)
	assert.True(t, res.Found && res.Updated)

	res, err = repo.MarkRead(ctx, studentID, a.ID, now)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.False(t, res.Updated)

	res, err = repo.MarkRead(ctx, uuid.New(), b.ID, now)
	require.NoError(t, err)
	assert.False(t, res.Found, "other students cannot see the row")

	res, err = repo.MarkRead(ctx, studentID, parent.ID, now)
	require.NoError(t, err)
	assert.False(t, res.Found, "parent copies are not in the inbox")

	count, err := repo.MarkAllRead(ctx, studentID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	deleted, err := repo.DeleteReadOlderThan(ctx, now.Add(-24*time.Hour), 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted, "limit bounds a single batch")

	deleted, err = repo.DeleteReadOlderThan(ctx, now.Add(-24*time.Hour), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	page, _, err := repo.List(ctx, listNotificationsParams{StudentID: studentID})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, fresh.ID, page[0].ID)
}

func TestRepositoryCountUnreadIgnoresParentCopies(t *testing.T) {
	repo := NewRepository(setupNotificationsTestDB(t))
	ctx := context.Background()
	studentID := uuid.New()
	now := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

	seedNotification(t, repo, studentID, enums.NotificationAudienceStudent, now, nil)
	seedNotification(t, repo, studentID, enums.NotificationAudienceStudent, now.Add(time.Minute), &now)
	seedNotification(t, repo, studentID, enums.NotificationAudienceParent, now, nil)
	seedNotification(t, repo, uuid.New(), enums.NotificationAudienceStudent, now, nil)

	count, err := repo.CountUnread(ctx, studentID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
