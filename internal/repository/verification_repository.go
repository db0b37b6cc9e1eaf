package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/pkg/database"
)

// emailVerificationRepository implements EmailVerificationRepository
type emailVerificationRepository struct {
	db *database.Postgres
}

// NewEmailVerificationRepository creates a new email verification repository
func NewEmailVerificationRepository(db *database.Postgres) EmailVerificationRepository {
	return &emailVerificationRepository{db: db}
}

// Create stores a new verification token
func (r *emailVerificationRepository) Create(ctx context.Context, v *domain.EmailVerification) error {
	query := `
		INSERT INTO email_verifications (user_id, email, token, expires_at, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}

	err := r.db.DB.QueryRowContext(ctx, query,
		v.UserID,
		v.Email,
		v.Token,
		v.ExpiresAt,
		v.Verified,
		v.CreatedAt,
	).Scan(&v.ID)

	if err != nil {
		return fmt.Errorf("failed to create email verification: %w", err)
	}

	return nil
}

// GetByToken retrieves a verification record by its token
func (r *emailVerificationRepository) GetByToken(ctx context.Context, token string) (*domain.EmailVerification, error) {
	query := `
		SELECT id, user_id, email, token, expires_at, verified, created_at
		FROM email_verifications
		WHERE token = $1
	`

	v := &domain.EmailVerification{}
	err := r.db.DB.QueryRowContext(ctx, query, token).Scan(
		&v.ID,
		&v.UserID,
		&v.Email,
		&v.Token,
		&v.ExpiresAt,
		&v.Verified,
		&v.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get email verification: %w", err)
	}

	return v, nil
}

// MarkVerified flips the verified flag on a verification record
func (r *emailVerificationRepository) MarkVerified(ctx context.Context, id int64) error {
	query := `UPDATE email_verifications SET verified = TRUE WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark verification: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("verification with id %d not found: %w", id, ErrNotFound)
	}

	return nil
}
