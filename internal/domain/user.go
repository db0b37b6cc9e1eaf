package domain

import "time"

// User represents a user account. PasswordHash is nil for accounts that
// only ever authenticated through an external OAuth provider.
type User struct {
	ID              int64      `json:"id" db:"id"`
	Email           string     `json:"email" db:"email"`
	Username        string     `json:"username" db:"username"`
	PasswordHash    *string    `json:"-" db:"password_hash"`
	FullName        *string    `json:"full_name" db:"full_name"`
	Provider        *string    `json:"provider" db:"provider"`
	ProviderID      *string    `json:"-" db:"provider_id"`
	EmailVerified   bool       `json:"email_verified" db:"email_verified"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	Role            string     `json:"role" db:"role"`
	PreferredLocale string     `json:"preferred_locale" db:"preferred_locale"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt     *time.Time `json:"last_login_at" db:"last_login_at"`
}

// HasPassword reports whether the account has a local password set.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// EmailVerification is a single-use, time-boxed email verification record.
type EmailVerification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Token     string    `json:"-" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Verified  bool      `json:"verified" db:"verified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// OAuthProfile is the identity an external provider asserted for a login.
// It is transient input to the identity resolver and is never stored as-is.
type OAuthProfile struct {
	Email      string
	Name       string
	Provider   string
	ProviderID string
}
