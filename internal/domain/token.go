package domain

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload of a signed session token.
type SessionClaims struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthEvent is a best-effort notification published after an auth action.
// Delivery is never guaranteed and failures never fail the request.
type AuthEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Auth event types.
const (
	EventUserRegistered    = "user.registered"
	EventUserLoggedIn      = "user.logged_in"
	EventUserLoggedOut     = "user.logged_out"
	EventUserVerified      = "user.verified"
	EventUserPasswordReset = "user.password_reset"
)
