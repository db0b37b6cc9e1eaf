package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/teamflow/auth-service/internal/apperrors"
	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/internal/repository"
	"github.com/teamflow/auth-service/internal/utils"
	"go.uber.org/zap"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// OAuthResolver finds or creates a local user for an external-provider
// profile: provider identity first, email linking second, creation last.
type OAuthResolver struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewOAuthResolver creates an OAuth identity resolver.
func NewOAuthResolver(users repository.UserRepository, logger *zap.Logger) *OAuthResolver {
	return &OAuthResolver{users: users, logger: logger}
}

// Resolve maps a provider profile to a local user. The profile's email
// format is the caller's responsibility, but a missing email is a hard
// failure before any lookup.
func (r *OAuthResolver) Resolve(ctx context.Context, profile domain.OAuthProfile) (*domain.User, error) {
	if profile.Email == "" {
		return nil, apperrors.Validation("Provider profile has no email")
	}

	// Fast path: the provider identity is already linked.
	user, err := r.users.GetByProvider(ctx, profile.Provider, profile.ProviderID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Second: an existing local account with the same email.
	user, err = r.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return r.link(ctx, user, profile)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return r.create(ctx, profile)
}

// link attaches the provider identity to an existing account. A user
// already linked to a different provider is returned unchanged; the
// mismatch is logged because it can indicate an email-collision attempt.
func (r *OAuthResolver) link(ctx context.Context, user *domain.User, profile domain.OAuthProfile) (*domain.User, error) {
	if user.ProviderID != nil {
		if user.Provider == nil || *user.Provider != profile.Provider {
			r.logger.Warn("OAuth login matched email of account linked to another provider",
				zap.Int64("user_id", user.ID),
				zap.String("requested_provider", profile.Provider))
		}
		return user, nil
	}

	user.Provider = &profile.Provider
	user.ProviderID = &profile.ProviderID
	// The external IdP is trusted to have verified the address.
	user.EmailVerified = true

	if err := r.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to link provider identity: %w", err)
	}

	r.logger.Info("Linked provider identity to existing account",
		zap.Int64("user_id", user.ID), zap.String("provider", profile.Provider))

	return user, nil
}

// create provisions a new account from the profile with a derived,
// collision-free username.
func (r *OAuthResolver) create(ctx context.Context, profile domain.OAuthProfile) (*domain.User, error) {
	username, err := r.uniqueUsername(ctx, profile)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:         strings.ToLower(profile.Email),
		Username:      username,
		Provider:      &profile.Provider,
		ProviderID:    &profile.ProviderID,
		EmailVerified: true,
		IsActive:      true,
		Role:          "user",
	}
	if profile.Name != "" {
		name := profile.Name
		user.FullName = &name
	}

	if err := r.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user from provider profile: %w", err)
	}

	r.logger.Info("Created user via OAuth",
		zap.Int64("user_id", user.ID), zap.String("provider", profile.Provider))

	return user, nil
}

// uniqueUsername derives a base username from the display name (or the
// email local part) and resolves collisions with a numeric suffix.
func (r *OAuthResolver) uniqueUsername(ctx context.Context, profile domain.OAuthProfile) (string, error) {
	source := profile.Name
	if source == "" {
		source, _, _ = strings.Cut(profile.Email, "@")
	}

	base := strings.ToLower(nonAlphanumeric.ReplaceAllString(source, ""))
	if len(base) < 3 {
		suffix, err := utils.RandomToken(4)
		if err != nil {
			return "", err
		}
		base = "user" + strings.ToLower(nonAlphanumeric.ReplaceAllString(suffix, ""))
	}

	username := base
	for counter := 1; ; counter++ {
		_, err := r.users.GetByUsername(ctx, username)
		if errors.Is(err, repository.ErrNotFound) {
			return username, nil
		}
		if err != nil {
			return "", err
		}
		username = fmt.Sprintf("%s%d", base, counter)
	}
}
