package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/teamflow/auth-service/internal/apperrors"
	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/internal/store"
	"go.uber.org/zap"
)

const blacklistKeyPrefix = "blacklist:token:"

// errTokenRevoked separates revocation from cryptographic failure in
// logs. Callers only ever see Unauthorized.
var errTokenRevoked = errors.New("token has been revoked")

// TokenService issues, verifies and revokes signed session tokens.
// Revocation is backed by the optional state store; without one,
// verification degrades to signature and expiry checks only.
type TokenService struct {
	secret []byte
	issuer string
	expiry time.Duration
	state  store.StateStore
	logger *zap.Logger
}

// NewTokenService creates a token service. state may be nil.
func NewTokenService(secret, issuer string, expiry time.Duration, state store.StateStore, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
		state:  state,
		logger: logger,
	}
}

// Expiry returns the configured token lifetime.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue signs a session token for the user.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := &domain.SessionClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks the blacklist, then the signature, issuer, expiry and
// required claims. Every failure surfaces as Unauthorized.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*domain.SessionClaims, error) {
	if s.IsRevoked(ctx, tokenString) {
		s.logger.Info("Rejected revoked token")
		return nil, apperrors.Unauthorized("Invalid or expired token").Wrap(errTokenRevoked)
	}

	claims := &domain.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token").Wrap(err)
	}

	if !token.Valid {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	if claims.UserID == 0 || claims.Email == "" || claims.Username == "" {
		return nil, apperrors.Unauthorized("Invalid token payload")
	}

	return claims, nil
}

// Revoke puts the token's fingerprint on the blacklist for exactly its
// remaining validity. It never returns an error: revocation failures are
// logged and swallowed so logout always succeeds from the caller's
// perspective.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) {
	if s.state == nil {
		s.logger.Warn("Token revocation skipped: state store not configured")
		return
	}

	// Signature does not need re-verification here; only the expiry
	// claim matters to bound the blacklist entry.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		s.logger.Warn("Token revocation skipped: token is not decodable", zap.Error(err))
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// Without an expiry the entry could never be TTL-bounded safely.
		return
	}

	remaining := time.Until(exp.Time)
	if remaining <= 0 {
		// Already expired; revoking is a no-op.
		return
	}

	key := blacklistKeyPrefix + hashToken(tokenString)
	if err := s.state.SetWithTTL(ctx, key, "1", remaining); err != nil {
		s.logger.Warn("Failed to blacklist token", zap.Error(err))
	}
}

// IsRevoked reports whether the token's fingerprint is blacklisted.
// It fails open: an unavailable or absent state store yields false.
func (s *TokenService) IsRevoked(ctx context.Context, tokenString string) bool {
	if s.state == nil {
		return false
	}

	revoked, err := s.state.Exists(ctx, blacklistKeyPrefix+hashToken(tokenString))
	if err != nil {
		s.logger.Warn("Blacklist lookup failed, allowing token", zap.Error(err))
		return false
	}

	return revoked
}

// hashToken fingerprints a token with SHA256 so raw bearer tokens never
// reach the state store's keyspace or logs.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
