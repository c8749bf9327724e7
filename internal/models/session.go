package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EditMode selects how marks are edited in the grid.
type EditMode string

const (
	EditModeSingle EditMode = "single"
	EditModeBulk   EditMode = "bulk"
)

// ValidEditMode reports whether mode is one of the supported edit modes.
func ValidEditMode(mode EditMode) bool {
	return mode == EditModeSingle || mode == EditModeBulk
}

// Session is the persisted console session: the upstream token obtained at
// login plus the user's settings. It is hydrated from Redis on each request
// and deleted on logout.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	UpstreamToken string    `json:"upstream_token"`
	EditMode      EditMode  `json:"edit_mode"`
	CreatedAt     time.Time `json:"created_at"`
}

// JWTClaims is the console access-token payload.
type JWTClaims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload accepted by the console, matching
// the school backend's login contract.
type LoginRequest struct {
	ID   string `json:"id" validate:"required"`
	Pass string `json:"pass" validate:"required"`
}

// LoginResult is returned to the browser after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	EditMode  EditMode  `json:"edit_mode"`
	ExpiresAt time.Time `json:"expires_at"`
}
