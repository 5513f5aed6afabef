package auth

import (
	"time"

	"github.com/hostelhub/hostelhub-backend/internal/users"
)

const tokenTypeBearer = "Bearer"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// RefreshRequest travels with the (possibly expired) access token in the
// Authorization header.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenPair is returned by login and refresh. ExpiresIn is in seconds and
// ExpiresAt is the same instant for clients that prefer a timestamp.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresIn    int       `json:"expiresIn"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type LoginResponse struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}
