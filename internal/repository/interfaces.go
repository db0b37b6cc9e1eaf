package repository

import (
	"context"

	"github.com/teamflow/auth-service/internal/domain"
)

// UserRepository defines methods for user operations. Uniqueness of
// email, username and (provider, provider_id) is enforced by database
// constraints; pre-checks in the service layer are best-effort only.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByProvider(ctx context.Context, provider, providerID string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, userID int64) error
}

// EmailVerificationRepository defines methods for email verification tokens.
type EmailVerificationRepository interface {
	Create(ctx context.Context, verification *domain.EmailVerification) error
	GetByToken(ctx context.Context, token string) (*domain.EmailVerification, error)
	MarkVerified(ctx context.Context, id int64) error
}
