package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"

	"github.com/hostelhub/hostelhub-backend/pkg/db"
)

// DefaultDir is the on-disk location used by create and validate.
const DefaultDir = "pkg/migrate/migrations"

const embeddedDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Dialect maps a pkg/db driver name onto the goose dialect.
func Dialect(driver string) string {
	if driver == db.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

func prepare(dialect string) error {
	if dialect == "" {
		dialect = "postgres"
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return nil
}

// Run executes a goose command against the migrations compiled into the binary.
func Run(ctx context.Context, conn *sql.DB, dialect string, command string, args ...string) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := prepare(dialect); err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, conn, embeddedDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// SchemaVersions reports the version the database is at and the newest
// migration compiled into the binary.
type SchemaVersions struct {
	Current int64
	Latest  int64
}

func (v SchemaVersions) Pending() bool { return v.Current < v.Latest }

func Versions(ctx context.Context, conn *sql.DB, dialect string) (SchemaVersions, error) {
	if conn == nil {
		return SchemaVersions{}, fmt.Errorf("db is required")
	}
	if err := prepare(dialect); err != nil {
		return SchemaVersions{}, err
	}
	current, err := goose.GetDBVersionContext(ctx, conn)
	if err != nil {
		return SchemaVersions{}, fmt.Errorf("get db version: %w", err)
	}
	all, err := goose.CollectMigrations(embeddedDir, 0, goose.MaxVersion)
	if err != nil {
		return SchemaVersions{}, fmt.Errorf("collect migrations: %w", err)
	}
	last, err := all.Last()
	if err != nil {
		return SchemaVersions{}, fmt.Errorf("latest migration: %w", err)
	}
	return SchemaVersions{Current: current, Latest: last.Version}, nil
}

// MigrateToVersion moves the schema up or down to target, which must be one
// of the embedded migration versions or 0.
func MigrateToVersion(ctx context.Context, conn *sql.DB, dialect string, target string) error {
	version, err := strconv.ParseInt(target, 10, 64)
	if err != nil || version < 0 {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", target)
	}
	v, err := Versions(ctx, conn, dialect)
	if err != nil {
		return err
	}
	if version > v.Latest {
		return fmt.Errorf("version %d is newer than the latest migration %d", version, v.Latest)
	}

	switch {
	case version > v.Current:
		err = goose.UpToContext(ctx, conn, embeddedDir, version)
	case version < v.Current:
		err = goose.DownToContext(ctx, conn, embeddedDir, version)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %d -> %d: %w", v.Current, version, err)
	}
	return nil
}
