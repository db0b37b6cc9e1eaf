package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teamflow/auth-service/internal/apperrors"
	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/internal/dto"
	"github.com/teamflow/auth-service/internal/repository"
	"github.com/teamflow/auth-service/internal/utils"
	"go.uber.org/zap"
)

const (
	providerLocal        = "local"
	verificationTokenLen = 32
	verificationTokenTTL = 24 * time.Hour
)

var supportedLocales = map[string]bool{"en": true, "uk": true}

// authService implements AuthService.
type authService struct {
	users         repository.UserRepository
	verifications repository.EmailVerificationRepository
	tokens        *TokenService
	lockout       *LockoutGuard
	resets        *PasswordResetFlow
	resolver      *OAuthResolver
	events        EventSink
	metrics       *AuthMetrics
	bcryptCost    int
	logger        *zap.Logger
}

// NewAuthService creates the authentication facade.
func NewAuthService(
	users repository.UserRepository,
	verifications repository.EmailVerificationRepository,
	tokens *TokenService,
	lockout *LockoutGuard,
	resets *PasswordResetFlow,
	resolver *OAuthResolver,
	events EventSink,
	metrics *AuthMetrics,
	bcryptCost int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:         users,
		verifications: verifications,
		tokens:        tokens,
		lockout:       lockout,
		resets:        resets,
		resolver:      resolver,
		events:        events,
		metrics:       metrics,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

// Signup validates the payload, creates the user, issues an email
// verification token and a session token.
func (s *authService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if !utils.ValidateEmail(req.Email) {
		return nil, apperrors.Validation("Invalid email address")
	}
	if !utils.ValidateUsername(req.Username) {
		return nil, apperrors.Validation("Username must be 3-50 characters of letters, numbers, hyphens and underscores")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, apperrors.Validation("Password must be at least 8 characters and contain uppercase, lowercase, number and symbol")
	}

	email := utils.SanitizeEmail(req.Email)

	// Best-effort pre-checks; the database constraints are the source
	// of truth under concurrent signups.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperrors.Conflict("Username already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	provider := providerLocal
	user := &domain.User{
		Email:        email,
		Username:     req.Username,
		PasswordHash: &hash,
		Provider:     &provider,
		IsActive:     true,
		Role:         "user",
	}
	if req.Name != "" {
		name := req.Name
		user.FullName = &name
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, s.mapDuplicate(err)
	}

	if err := s.createEmailVerification(ctx, user); err != nil {
		// The account exists; verification can be re-requested later.
		s.logger.Warn("Failed to create email verification",
			zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.metrics.RecordSignup(ctx)
	s.events.Publish(ctx, domain.AuthEvent{
		Type:     domain.EventUserRegistered,
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))

	return s.authResponse(user)
}

// Login authenticates by email or username, enforcing the lockout guard
// before any password comparison.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, utils.SanitizeEmail(req.EmailOrUsername))
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.users.GetByUsername(ctx, req.EmailOrUsername)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.RecordLogin(ctx, false)
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if status := s.lockout.CheckLocked(ctx, user.Email); status.Locked {
		s.metrics.RecordLockout(ctx)
		s.logger.Warn("Login rejected by account lockout",
			zap.Int64("user_id", user.ID),
			zap.Duration("retry_after", status.RetryAfter))
		return nil, apperrors.Locked(
			"Account temporarily locked due to multiple failed login attempts",
			status.RetryAfter,
		)
	}

	if !user.HasPassword() {
		// OAuth-only account; a password login can never succeed.
		s.metrics.RecordLogin(ctx, false)
		return nil, apperrors.Unauthorized("Invalid login method")
	}

	if !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		s.lockout.RecordFailure(ctx, user.Email)
		s.metrics.RecordLogin(ctx, false)
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	s.lockout.Clear(ctx, user.Email)

	if !user.IsActive {
		s.metrics.RecordLogin(ctx, false)
		return nil, apperrors.Forbidden("Account is disabled")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last login",
			zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.metrics.RecordLogin(ctx, true)
	s.events.Publish(ctx, domain.AuthEvent{
		Type:   domain.EventUserLoggedIn,
		UserID: user.ID,
	})

	return s.authResponse(user)
}

// LoginWithProvider resolves the OAuth profile to a local account and
// issues a session token.
func (s *authService) LoginWithProvider(ctx context.Context, profile domain.OAuthProfile) (*dto.AuthResponse, error) {
	user, err := s.resolver.Resolve(ctx, profile)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("Account is disabled")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to update last login",
			zap.Int64("user_id", user.ID), zap.Error(err))
	}

	s.metrics.RecordLogin(ctx, true)
	s.events.Publish(ctx, domain.AuthEvent{
		Type:   domain.EventUserLoggedIn,
		UserID: user.ID,
	})

	return s.authResponse(user)
}

// Logout revokes the presented token. It never fails.
func (s *authService) Logout(ctx context.Context, token string) {
	// Extract the subject before revocation blacklists the token.
	claims, verifyErr := s.tokens.Verify(ctx, token)

	s.tokens.Revoke(ctx, token)
	s.metrics.RecordRevocation(ctx)

	if verifyErr == nil {
		s.events.Publish(ctx, domain.AuthEvent{
			Type:   domain.EventUserLoggedOut,
			UserID: claims.UserID,
		})
	}
}

// VerifyEmail consumes a verification token and marks the user verified.
func (s *authService) VerifyEmail(ctx context.Context, token string) (*dto.UserResponse, error) {
	if token == "" {
		return nil, apperrors.Validation("Verification token is required")
	}

	verification, err := s.verifications.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Verification token not found")
		}
		return nil, err
	}

	if verification.Verified {
		return nil, apperrors.Validation("Email already verified")
	}
	if time.Now().After(verification.ExpiresAt) {
		return nil, apperrors.Validation("Verification token expired")
	}

	if err := s.verifications.MarkVerified(ctx, verification.ID); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, verification.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}

	user.EmailVerified = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, domain.AuthEvent{
		Type:   domain.EventUserVerified,
		UserID: user.ID,
		Email:  user.Email,
	})

	s.logger.Info("Email verified", zap.Int64("user_id", user.ID))

	resp := userResponse(user)
	return &resp, nil
}

// ForgotPassword issues a reset token when the email belongs to a user.
// The returned token is empty for unknown emails; handlers respond
// identically either way to avoid account enumeration.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if !utils.ValidateEmail(email) {
		return "", apperrors.Validation("Invalid email address")
	}

	user, err := s.users.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return "", nil
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	token, err := s.resets.CreateResetToken(ctx, user.Email)
	if err != nil {
		return "", err
	}

	s.logger.Info("Password reset token issued", zap.Int64("user_id", user.ID))
	return token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if !utils.ValidatePassword(newPassword) {
		return apperrors.Validation("Password must be at least 8 characters and contain uppercase, lowercase, number and symbol")
	}

	user, err := s.resets.ConsumeResetToken(ctx, token, newPassword)
	if err != nil {
		return err
	}

	s.lockout.Clear(ctx, user.Email)
	s.events.Publish(ctx, domain.AuthEvent{
		Type:   domain.EventUserPasswordReset,
		UserID: user.ID,
	})

	s.logger.Info("Password reset completed", zap.Int64("user_id", user.ID))
	return nil
}

// GetCurrentUser re-fetches the user so role and flag changes take
// effect immediately, not at token refresh.
func (s *authService) GetCurrentUser(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized("User not found")
		}
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

// UpdateLocale changes the user's preferred locale.
func (s *authService) UpdateLocale(ctx context.Context, userID int64, locale string) (*dto.UserResponse, error) {
	if !supportedLocales[locale] {
		return nil, apperrors.Validation("Invalid locale. Supported locales: en, uk")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, err
	}

	user.PreferredLocale = locale
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := userResponse(user)
	return &resp, nil
}

// ValidateToken delegates to the token service.
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error) {
	return s.tokens.Verify(ctx, token)
}

func (s *authService) createEmailVerification(ctx context.Context, user *domain.User) error {
	token, err := utils.RandomToken(verificationTokenLen)
	if err != nil {
		return err
	}

	return s.verifications.Create(ctx, &domain.EmailVerification{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(verificationTokenTTL),
	})
}

func (s *authService) authResponse(user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		User:      userResponse(user),
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.Expiry().Seconds()),
	}, nil
}

// mapDuplicate converts repository uniqueness sentinels hit during the
// race-safe insert into conflict errors.
func (s *authService) mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.Conflict("Email already registered")
	case errors.Is(err, repository.ErrDuplicateUsername):
		return apperrors.Conflict("Username already taken")
	default:
		return err
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              user.ID,
		Email:           user.Email,
		Username:        user.Username,
		FullName:        user.FullName,
		EmailVerified:   user.EmailVerified,
		Role:            user.Role,
		PreferredLocale: user.PreferredLocale,
		CreatedAt:       user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       user.UpdatedAt.Format(time.RFC3339),
	}
}
