package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hostelhub/hostelhub-backend/pkg/enums"
)

// AccessTokenPayload is what the login and refresh flows know about the
// caller when a token is minted.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	DisplayName string
	StudentID   *uuid.UUID
	JTI         string
}

func (p AccessTokenPayload) validate() error {
	return checkIdentity(p.UserID, p.Role, p.StudentID)
}

type AccessTokenClaims struct {
	UserID      uuid.UUID      `json:"user_id"`
	Role        enums.UserRole `json:"role"`
	DisplayName string         `json:"name,omitempty"`
	StudentID   *uuid.UUID     `json:"student_id,omitempty"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks. A signed token whose
// identity is inconsistent is treated like a forged one.
func (c AccessTokenClaims) Validate() error {
	if err := checkIdentity(c.UserID, c.Role, c.StudentID); err != nil {
		return err
	}
	if c.Subject != c.UserID.String() {
		return errors.New("subject does not match user id")
	}
	if c.ID == "" {
		return errors.New("missing token id")
	}
	return nil
}

// IsStudent reports whether the token scopes the caller to one student.
func (c AccessTokenClaims) IsStudent() bool {
	return c.Role == enums.UserRoleStudent
}

func checkIdentity(userID uuid.UUID, role enums.UserRole, studentID *uuid.UUID) error {
	switch {
	case userID == uuid.Nil:
		return errors.New("user id is required")
	case !role.IsValid():
		return fmt.Errorf("invalid user role %q", role)
	case role == enums.UserRoleStudent && (studentID == nil || *studentID == uuid.Nil):
		return errors.New("student tokens require a student id")
	}
	return nil
}
