package dto

// SignupRequest represents a signup request.
type SignupRequest struct {
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// LoginRequest represents a login request. EmailOrUsername accepts either
// identifier; the service decides which lookup to run.
type LoginRequest struct {
	EmailOrUsername string `json:"emailOrUsername" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

// ProviderLoginRequest carries a provider-issued token for OAuth login.
type ProviderLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmailRequest consumes an email verification token.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest consumes a password reset token.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateLocaleRequest changes the user's preferred locale.
type UpdateLocaleRequest struct {
	Locale string `json:"locale" binding:"required"`
}

// UserResponse is the public view of a user. It never includes the
// password hash or the provider-assigned id.
type UserResponse struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email"`
	Username        string  `json:"username"`
	FullName        *string `json:"full_name"`
	EmailVerified   bool    `json:"email_verified"`
	Role            string  `json:"role"`
	PreferredLocale string  `json:"preferred_locale"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// AuthResponse is returned from signup, login and OAuth login.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"`
}

// SuccessResponse represents a success response.
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	RetryAfterMinutes int    `json:"retry_after_minutes,omitempty"`
}
