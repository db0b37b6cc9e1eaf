package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teamflow/auth-service/internal/apperrors"
	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/internal/repository"
	"github.com/teamflow/auth-service/internal/store"
	"github.com/teamflow/auth-service/internal/utils"
	"go.uber.org/zap"
)

const (
	resetKeyPrefix   = "password-reset:"
	resetTokenLength = 32
	resetTokenTTL    = time.Hour
)

// PasswordResetFlow issues single-use, time-boxed reset tokens and
// consumes them to set a new password. Tokens carry only the email, not
// the user id; the user lookup is repeated at consumption time.
type PasswordResetFlow struct {
	state      store.StateStore
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewPasswordResetFlow creates a password reset flow. Unlike the other
// state store consumers this one cannot degrade: without a store, reset
// operations fail outright.
func NewPasswordResetFlow(state store.StateStore, users repository.UserRepository, bcryptCost int, logger *zap.Logger) *PasswordResetFlow {
	return &PasswordResetFlow{
		state:      state,
		users:      users,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateResetToken generates a high-entropy token mapped to the
// lowercased email for one hour. Caller is responsible for having
// confirmed the user exists.
func (f *PasswordResetFlow) CreateResetToken(ctx context.Context, email string) (string, error) {
	if f.state == nil {
		return "", fmt.Errorf("state store is required for password reset")
	}

	token, err := utils.RandomToken(resetTokenLength)
	if err != nil {
		return "", err
	}

	key := resetKeyPrefix + token
	if err := f.state.SetWithTTL(ctx, key, strings.ToLower(email), resetTokenTTL); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	return token, nil
}

// ConsumeResetToken resolves the token, sets the new password and burns
// the token. An absent token is indistinguishable from an expired one.
func (f *PasswordResetFlow) ConsumeResetToken(ctx context.Context, token, newPassword string) (*domain.User, error) {
	if f.state == nil {
		return nil, fmt.Errorf("state store is required for password reset")
	}

	key := resetKeyPrefix + token

	email, err := f.state.Get(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, apperrors.Validation("Invalid or expired password reset token")
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	user, err := f.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User no longer exists")
		}
		return nil, err
	}

	hash, err := utils.HashPassword(newPassword, f.bcryptCost)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = &hash
	if err := f.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	// Burn the token only after the password update succeeded: a crash
	// in between leaves the token usable for one redundant retry rather
	// than stranding the user.
	if err := f.state.Del(ctx, key); err != nil {
		f.logger.Warn("Failed to delete consumed reset token", zap.Error(err))
	}

	return user, nil
}
