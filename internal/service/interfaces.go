package service

import (
	"context"

	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/internal/dto"
)

// AuthService composes the token service, lockout guard, reset flow and
// identity resolver into the operations the HTTP layer consumes.
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	LoginWithProvider(ctx context.Context, profile domain.OAuthProfile) (*dto.AuthResponse, error)
	Logout(ctx context.Context, token string)
	VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error)
	UpdateLocale(ctx context.Context, userID int64, locale string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error)
}
