package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type warden struct {
	ID    int
	Email string `gorm:"uniqueIndex"`
}

func memoryDSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(memoryDSN()), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&warden{}))
	return conn
}

func countWardens(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&warden{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	conn := openMemory(t)
	client := NewFromGorm(conn)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&warden{Email: "a@hostel.test"}).Error
	}))
	assert.EqualValues(t, 1, countWardens(t, conn))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&warden{Email: "b@hostel.test"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.EqualValues(t, 1, countWardens(t, conn))
}

func TestWithTxSurfacesUniqueViolation(t *testing.T) {
	conn := openMemory(t)
	client := NewFromGorm(conn)
	ctx := context.Background()

	require.NoError(t, conn.Create(&warden{Email: "dup@hostel.test"}).Error)
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&warden{Email: "dup@hostel.test"}).Error
	})
	assert.True(t, IsUniqueViolation(err, ""))
}

func TestRunInTxRetriesSerializationFailures(t *testing.T) {
	conn := openMemory(t)
	calls := 0
	err := RunInTx(context.Background(), conn, 3, func(tx *gorm.DB) error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return tx.Create(&warden{Email: "retry@hostel.test"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.EqualValues(t, 1, countWardens(t, conn))
}

func TestRunInTxGivesUp(t *testing.T) {
	conn := openMemory(t)
	calls := 0
	err := RunInTx(context.Background(), conn, 2, func(*gorm.DB) error {
		calls++
		return &pgconn.PgError{Code: "40P01"}
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, IsRetryable(err))
}

func TestRunInTxDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	err := RunInTx(context.Background(), openMemory(t), 5, func(*gorm.DB) error {
		calls++
		return errors.New("validation")
	})
	assert.EqualError(t, err, "validation")
	assert.Equal(t, 1, calls)
}

func TestRunInTxStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunInTx(ctx, openMemory(t), 3, func(*gorm.DB) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewOpensSQLite(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{SQLitePath: memoryDSN()}, true, nil)
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, DriverSQLite, client.Driver())
}

func TestNewRequiresConnectionSettings(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{}, false, nil)
	assert.ErrorContains(t, err, "DSN is required")

	_, err = New(context.Background(), config.DBConfig{Driver: DriverSQLite}, false, nil)
	assert.ErrorContains(t, err, "sqlite path is required")
}
