package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/migrate"
)

// dbCommand runs against the embedded migrations.
type dbCommand struct {
	help        string
	destructive bool
	run         func(ctx context.Context, conn *sql.DB, dialect string) error
}

func main() {
	cmd := flag.String("cmd", "up", "migration command (see -help)")
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory for create and validate")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	force := flag.Bool("force", false, "allow destructive commands outside dev")

	commands := map[string]dbCommand{
		"up": {help: "apply all pending migrations", run: func(ctx context.Context, conn *sql.DB, dialect string) error {
			return migrate.Run(ctx, conn, dialect, "up")
		}},
		"down": {help: "roll back the newest migration", destructive: true, run: func(ctx context.Context, conn *sql.DB, dialect string) error {
			return migrate.Run(ctx, conn, dialect, "down")
		}},
		"redo": {help: "roll back and re-apply the newest migration", destructive: true, run: func(ctx context.Context, conn *sql.DB, dialect string) error {
			return migrate.Run(ctx, conn, dialect, "redo")
		}},
		"reset": {help: "roll back every migration", destructive: true, run: func(ctx context.Context, conn *sql.DB, dialect string) error {
			return migrate.Run(ctx, conn, dialect, "reset")
		}},
		"status": {help: "print applied and pending migrations", run: func(ctx context.Context, conn *sql.DB, dialect string) error {
			return migrate.Run(ctx, conn, dialect, "status")
		}},
		"version": {help: "migrate up or down to -version", destructive: true, run: func(ctx context.Context, conn *sql.DB, dialect string) error {
			if *version == "" {
				return fmt.Errorf("missing -version")
			}
			return migrate.MigrateToVersion(ctx, conn, dialect, *version)
		}},
	}

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate -cmd=<command> [flags]\n\ncommands:\n")
		names := make([]string, 0, len(commands))
		for n := range commands {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(flag.CommandLine.Output(), "  %-9s %s\n", n, commands[n].help)
		}
		fmt.Fprintf(flag.CommandLine.Output(), "  %-9s %s\n  %-9s %s\n\nflags:\n", "create", "write a new SQL migration into -dir", "validate", "check migrations in -dir (or the embedded set with -dir=embedded)")
		flag.PrintDefaults()
	}
	flag.Parse()

	_ = godotenv.Load()
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	ctx := logg.WithField(context.Background(), "cmd", *cmd)

	// file-only commands run without config so they work on a bare checkout
	switch *cmd {
	case "create":
		if strings.TrimSpace(*name) == "" {
			exitf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exitf("failed to create migration: %v", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		var err error
		if *dir == "embedded" {
			err = migrate.ValidateEmbedded()
		} else {
			err = migrate.ValidateDir(*dir)
		}
		if err != nil {
			exitf("migration validation failed: %v", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	command, ok := commands[*cmd]
	if !ok {
		flag.Usage()
		exitf("unknown -cmd value: %s", *cmd)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})

	if command.destructive && !cfg.App.IsDev() && !*force {
		exitf("%s is destructive; pass -force to run it in %s", *cmd, cfg.App.Env)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	requireResource(ctx, logg, "sql database", err)

	dialect := migrate.Dialect(dbClient.Driver())
	ctx = logg.WithField(ctx, "dialect", dialect)
	logg.Info(ctx, "running migration command")

	if err := command.run(ctx, sqlDB, dialect); err != nil {
		logg.Error(ctx, "migration command failed", err)
		dbClient.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migration command completed")
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
