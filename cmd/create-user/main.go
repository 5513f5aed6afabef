package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/hostelhub/hostelhub-backend/internal/students"
	"github.com/hostelhub/hostelhub-backend/internal/users"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	"github.com/hostelhub/hostelhub-backend/pkg/logger"
	"github.com/hostelhub/hostelhub-backend/pkg/security"
)

const tempPasswordLength = 16

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "create-user"})

	_ = godotenv.Load()

	email := flag.String("email", "", "account email")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(enums.UserRoleStaff), "admin|staff|student")
	password := flag.String("password", "", "initial password; a temporary one is generated when empty")
	studentID := flag.String("student-id", "", "linked student record id (student accounts only)")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "create-user",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	parsedRole, err := enums.ParseUserRole(*role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	input := users.CreateUserInput{
		Email:       *email,
		Password:    *password,
		DisplayName: *name,
		Role:        parsedRole,
	}
	if raw := strings.TrimSpace(*studentID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -student-id: %v\n", err)
			os.Exit(2)
		}
		input.StudentID = &id
	}

	generated := false
	if input.Password == "" {
		input.Password, err = security.GenerateTempPassword(tempPasswordLength)
		requireResource(ctx, logg, "password generator", err)
		generated = true
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	provisioner, err := users.NewProvisioner(
		users.NewRepository(dbClient.DB()),
		students.NewRepository(dbClient.DB()),
		cfg.Password,
	)
	requireResource(ctx, logg, "provisioner", err)

	created, err := provisioner.Create(ctx, input)
	if err != nil {
		logg.Error(logg.WithField(ctx, "email", *email), "create user failed", err)
		fmt.Fprintf(os.Stderr, "create user failed: %v\n", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{"user_id": created.ID.String(), "role": string(created.Role)})
	logg.Info(ctx, "user created")

	fmt.Printf("created %s user %s (%s)\n", created.Role, created.Email, created.ID)
	if generated {
		fmt.Printf("temporary password: %s\n", input.Password)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
