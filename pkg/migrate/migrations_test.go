package migrate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
)

func TestMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir(embeddedDir))
	require.NoError(t, ValidateEmbedded())
}

func TestValidateAnnotations(t *testing.T) {
	cases := map[string]string{
		"missing down":   "-- +goose Up\nSELECT 1;\n",
		"down before up": "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"unterminated":   "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
		"stray end":      "-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n",
		"nested begin":   "-- +goose Up\n-- +goose StatementBegin\n-- +goose StatementBegin\n-- +goose Down\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, validateAnnotations(body))
		})
	}
	assert.NoError(t, validateAnnotations("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose StatementEnd\n-- +goose Down\nSELECT 1;\n"))
}

func TestLeaveRequestsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join(embeddedDir, "*_create_leave_requests.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no leave requests migration found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS leave_requests",
		"CHECK (end_date >= start_date)",
		"UNIQUE (leave_request_id, sequence)",
		"UNIQUE (leave_request_id, position)",
		"DROP TABLE IF EXISTS leave_requests",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect(db.DriverSQLite))
	assert.Equal(t, "postgres", Dialect(db.DriverPostgres))
	assert.Equal(t, "postgres", Dialect(""))
}

func openSQLite(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn, sqlDB
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	conn, sqlDB := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite3", "up"))

	for _, table := range []string{"students", "users", "leave_requests", "leave_documents", "leave_audit_entries", "notifications"} {
		assert.True(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}

	require.NoError(t, Run(ctx, sqlDB, "sqlite3", "reset"))
	assert.False(t, conn.Migrator().HasTable("leave_requests"))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Room Capacity")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_room_capacity.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "  !!  ")
	assert.Error(t, err)
}

func TestCreateSQLMigrationSortsAfterNewest(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "20300101000000_future.sql")
	require.NoError(t, os.WriteFile(existing, []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	path, err := createSQLMigration(dir, "add_parent_contact", now)
	require.NoError(t, err)
	assert.Equal(t, "20300101000001_add_parent_contact.sql", filepath.Base(path))

	path, err = createSQLMigration(dir, "add_room_block_index", now)
	require.NoError(t, err)
	assert.Equal(t, "20300101000002_add_room_block_index.sql", filepath.Base(path))
}

func TestMigrateToVersionMovesBothWays(t *testing.T) {
	conn, sqlDB := openSQLite(t)
	ctx := context.Background()

	v, err := Versions(ctx, sqlDB, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Current)
	assert.Equal(t, int64(20250106090300), v.Latest)
	assert.True(t, v.Pending())

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite3", "20250106090100"))
	assert.True(t, conn.Migrator().HasTable("users"))
	assert.False(t, conn.Migrator().HasTable("leave_requests"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite3", "20250106090300"))
	assert.True(t, conn.Migrator().HasTable("notifications"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite3", "20250106090000"))
	assert.False(t, conn.Migrator().HasTable("users"))
	assert.True(t, conn.Migrator().HasTable("students"))

	assert.Error(t, MigrateToVersion(ctx, sqlDB, "sqlite3", "20990101000000"))
	assert.Error(t, MigrateToVersion(ctx, sqlDB, "sqlite3", "latest"))
}

func TestMaybeRunDevAppliesPendingOnSQLite(t *testing.T) {
	conn, _ := openSQLite(t)
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	ctx := context.Background()

	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), db.NewFromGorm(conn)))
	assert.True(t, conn.Migrator().HasTable("leave_requests"))

	// second start is a no-op
	require.NoError(t, MaybeRunDev(ctx, cfg, logger.Nop(), db.NewFromGorm(conn)))
}

func TestAutoRunEnabled(t *testing.T) {
	assert.False(t, autoRunEnabled(nil, nil))
}
