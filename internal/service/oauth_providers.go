package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/teamflow/auth-service/internal/apperrors"
	"github.com/teamflow/auth-service/internal/domain"
	"go.uber.org/zap"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	microsoftGraphURL  = "https://graph.microsoft.com/v1.0/me"

	providerGoogle    = "google"
	providerMicrosoft = "microsoft"
)

// ProviderVerifier exchanges provider-issued tokens for verified OAuth
// profiles. Endpoint URLs are configurable to keep the verifier testable.
type ProviderVerifier struct {
	client       *http.Client
	googleURL    string
	microsoftURL string
	logger       *zap.Logger
}

// NewProviderVerifier creates a verifier against the real provider
// endpoints.
func NewProviderVerifier(logger *zap.Logger) *ProviderVerifier {
	return &ProviderVerifier{
		client:       &http.Client{Timeout: 10 * time.Second},
		googleURL:    googleTokenInfoURL,
		microsoftURL: microsoftGraphURL,
		logger:       logger,
	}
}

// VerifyGoogleToken validates a Google ID token against the tokeninfo
// endpoint and returns the asserted profile.
func (v *ProviderVerifier) VerifyGoogleToken(ctx context.Context, token string) (*domain.OAuthProfile, error) {
	endpoint := v.googleURL + "?id_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("Google token validation failed", zap.Error(err))
		return nil, apperrors.Unauthorized("Invalid Google token").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("Google token rejected", zap.String("status", resp.Status))
		return nil, apperrors.Unauthorized("Invalid Google token")
	}

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Unauthorized("Invalid Google token").Wrap(err)
	}

	return &domain.OAuthProfile{
		Email:      payload.Email,
		Name:       payload.Name,
		Provider:   providerGoogle,
		ProviderID: payload.Sub,
	}, nil
}

// VerifyMicrosoftToken validates a Microsoft Graph access token by
// fetching the profile it grants access to.
func (v *ProviderVerifier) VerifyMicrosoftToken(ctx context.Context, token string) (*domain.OAuthProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.microsoftURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("Microsoft token validation failed", zap.Error(err))
		return nil, apperrors.Unauthorized("Invalid Microsoft token").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("Microsoft token rejected", zap.String("status", resp.Status))
		return nil, apperrors.Unauthorized("Invalid Microsoft token")
	}

	var payload struct {
		ID                string `json:"id"`
		UserPrincipalName string `json:"userPrincipalName"`
		Mail              string `json:"mail"`
		DisplayName       string `json:"displayName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.Unauthorized("Invalid Microsoft token").Wrap(err)
	}

	email := payload.UserPrincipalName
	if email == "" {
		email = payload.Mail
	}

	return &domain.OAuthProfile{
		Email:      email,
		Name:       payload.DisplayName,
		Provider:   providerMicrosoft,
		ProviderID: payload.ID,
	}, nil
}
