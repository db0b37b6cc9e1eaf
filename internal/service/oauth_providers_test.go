package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamflow/auth-service/internal/apperrors"
	"go.uber.org/zap"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *ProviderVerifier {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &ProviderVerifier{
		client:       &http.Client{Timeout: time.Second},
		googleURL:    server.URL,
		microsoftURL: server.URL,
		logger:       zap.NewNop(),
	}
}

func TestVerifyGoogleToken(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "id-token-123", r.URL.Query().Get("id_token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"google-sub-1","email":"alice@example.com","name":"Alice Liddell"}`))
	})

	profile, err := verifier.VerifyGoogleToken(context.Background(), "id-token-123")
	require.NoError(t, err)

	assert.Equal(t, "google", profile.Provider)
	assert.Equal(t, "google-sub-1", profile.ProviderID)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, "Alice Liddell", profile.Name)
}

func TestVerifyGoogleTokenRejected(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := verifier.VerifyGoogleToken(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}

func TestVerifyMicrosoftToken(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ms-oid-9","userPrincipalName":"alice@example.com","displayName":"Alice Liddell"}`))
	})

	profile, err := verifier.VerifyMicrosoftToken(context.Background(), "access-token-123")
	require.NoError(t, err)

	assert.Equal(t, "microsoft", profile.Provider)
	assert.Equal(t, "ms-oid-9", profile.ProviderID)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestVerifyMicrosoftTokenFallsBackToMail(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ms-oid-9","mail":"alice@example.com","displayName":"Alice Liddell"}`))
	})

	profile, err := verifier.VerifyMicrosoftToken(context.Background(), "access-token-123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", profile.Email)
}

func TestVerifyMicrosoftTokenRejected(t *testing.T) {
	verifier := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := verifier.VerifyMicrosoftToken(context.Background(), "bad-token")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
}
