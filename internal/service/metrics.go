package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics counts auth outcomes for the /metrics endpoint.
type AuthMetrics struct {
	signups     metric.Int64Counter
	logins      metric.Int64Counter
	lockouts    metric.Int64Counter
	revocations metric.Int64Counter
}

// NewAuthMetrics registers the auth counters on the global meter provider.
func NewAuthMetrics() (*AuthMetrics, error) {
	meter := otel.Meter("auth-service")

	signups, err := meter.Int64Counter("auth_signups_total",
		metric.WithDescription("Completed signups"))
	if err != nil {
		return nil, err
	}

	logins, err := meter.Int64Counter("auth_logins_total",
		metric.WithDescription("Login attempts by result"))
	if err != nil {
		return nil, err
	}

	lockouts, err := meter.Int64Counter("auth_lockouts_total",
		metric.WithDescription("Login attempts rejected by account lockout"))
	if err != nil {
		return nil, err
	}

	revocations, err := meter.Int64Counter("auth_token_revocations_total",
		metric.WithDescription("Tokens revoked on logout"))
	if err != nil {
		return nil, err
	}

	return &AuthMetrics{
		signups:     signups,
		logins:      logins,
		lockouts:    lockouts,
		revocations: revocations,
	}, nil
}

func (m *AuthMetrics) RecordSignup(ctx context.Context) {
	if m == nil {
		return
	}
	m.signups.Add(ctx, 1)
}

func (m *AuthMetrics) RecordLogin(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *AuthMetrics) RecordLockout(ctx context.Context) {
	if m == nil {
		return
	}
	m.lockouts.Add(ctx, 1)
}

func (m *AuthMetrics) RecordRevocation(ctx context.Context) {
	if m == nil {
		return
	}
	m.revocations.Add(ctx, 1)
}
