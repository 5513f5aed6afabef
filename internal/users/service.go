package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/db"
	"github.com/hostelhub/hostelhub-backend/pkg/db/models"
	"github.com/hostelhub/hostelhub-backend/pkg/enums"
	pkgerrors "github.com/hostelhub/hostelhub-backend/pkg/errors"
	"github.com/hostelhub/hostelhub-backend/pkg/security"
)

var validate = validator.New()

type userStore interface {
	Create(ctx context.Context, user *models.User) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
}

// Provisioner creates accounts.
type Provisioner struct {
	users    userStore
	students studentLookup
	password config.PasswordConfig
	now      func() time.Time
}

// NewProvisioner wires account creation. students may be nil when no student accounts are created.
func NewProvisioner(users userStore, students studentLookup, password config.PasswordConfig) (*Provisioner, error) {
	if users == nil {
		return nil, fmt.Errorf("user store required")
	}
	return &Provisioner{users: users, students: students, password: password, now: time.Now}, nil
}

// Create validates the input, hashes the password and stores the account.
func (p *Provisioner) Create(ctx context.Context, in CreateUserInput) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name is required")
	}
	if !in.Role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", in.Role)
	}
	if err := security.ValidatePassword(in.Password); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "password rejected")
	}

	var studentID *uuid.UUID
	switch {
	case in.Role == enums.UserRoleStudent && in.StudentID == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "student accounts must link a student record")
	case in.Role != enums.UserRoleStudent && in.StudentID != nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only student accounts link a student record")
	case in.StudentID != nil:
		if p.students == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "student directory unavailable")
		}
		if _, err := p.students.FindByID(ctx, *in.StudentID); err != nil {
			return nil, db.Translate(err, "student")
		}
		id := *in.StudentID
		studentID = &id
	}

	hash, err := security.HashPassword(in.Password, p.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := p.now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  name,
		Role:         in.Role,
		StudentID:    studentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), nil
}
