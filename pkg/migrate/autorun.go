package migrate

import (
	"context"
	"fmt"

	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations on startup. It only acts in the dev
// environment with HOSTELHUB_AUTO_MIGRATE set, or against the embedded
// sqlite driver where the schema always starts empty.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !autoRunEnabled(cfg, client) {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	dialect := Dialect(client.Driver())
	versions, err := Versions(ctx, sqlDB, dialect)
	if err != nil {
		return err
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"dialect":      dialect,
		"from_version": versions.Current,
		"to_version":   versions.Latest,
	})
	if !versions.Pending() {
		logg.Debug(ctx, "schema up to date")
		return nil
	}

	logg.Info(ctx, "applying pending migrations")
	if err := Run(ctx, sqlDB, dialect, "up"); err != nil {
		return err
	}
	logg.Info(ctx, "migrations applied")
	return nil
}

func autoRunEnabled(cfg *config.Config, client *db.Client) bool {
	if cfg == nil || client == nil {
		return false
	}
	if client.Driver() == db.DriverSQLite {
		return true
	}
	return cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}
