package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/teamflow/auth-service/internal/store"
	"go.uber.org/zap"
)

const lockoutKeyPrefix = "account-lockout:"

// LockoutStatus is the result of a lockout check.
type LockoutStatus struct {
	Locked     bool
	RetryAfter time.Duration
}

// LockoutGuard tracks failed login attempts per identifier and blocks
// authentication past the threshold until the window expires. Lockout is
// a derived predicate over a single TTL-bound counter: when the counter
// expires, the lockout clears with it. Without a state store every
// operation is a no-op and nothing is ever locked.
type LockoutGuard struct {
	state     store.StateStore
	threshold int
	window    time.Duration
	logger    *zap.Logger
}

// NewLockoutGuard creates a lockout guard. state may be nil.
func NewLockoutGuard(state store.StateStore, threshold int, window time.Duration, logger *zap.Logger) *LockoutGuard {
	return &LockoutGuard{
		state:     state,
		threshold: threshold,
		window:    window,
		logger:    logger,
	}
}

func lockoutKey(identifier string) string {
	return lockoutKeyPrefix + strings.ToLower(identifier)
}

// CheckLocked reports whether the identifier is currently locked out and
// for how long. Store errors fail open.
func (g *LockoutGuard) CheckLocked(ctx context.Context, identifier string) LockoutStatus {
	if g.state == nil {
		return LockoutStatus{}
	}

	key := lockoutKey(identifier)

	val, err := g.state.Get(ctx, key)
	if err != nil {
		if err != store.ErrKeyNotFound {
			g.logger.Warn("Lockout check failed, allowing attempt",
				zap.String("identifier", identifier), zap.Error(err))
		}
		return LockoutStatus{}
	}

	attempts, err := strconv.Atoi(val)
	if err != nil || attempts < g.threshold {
		return LockoutStatus{}
	}

	ttl, err := g.state.TTL(ctx, key)
	if err != nil {
		g.logger.Warn("Lockout TTL lookup failed, allowing attempt",
			zap.String("identifier", identifier), zap.Error(err))
		return LockoutStatus{}
	}
	if ttl < 0 {
		ttl = 0
	}

	return LockoutStatus{Locked: true, RetryAfter: ttl}
}

// RecordFailure increments the attempt counter. The TTL is set only when
// the increment opens a fresh window, so the window stays anchored to
// the first failure.
func (g *LockoutGuard) RecordFailure(ctx context.Context, identifier string) {
	if g.state == nil {
		return
	}

	key := lockoutKey(identifier)

	attempts, err := g.state.Incr(ctx, key)
	if err != nil {
		g.logger.Warn("Failed to record login failure",
			zap.String("identifier", identifier), zap.Error(err))
		return
	}

	if attempts == 1 {
		if err := g.state.Expire(ctx, key, g.window); err != nil {
			g.logger.Warn("Failed to set lockout window",
				zap.String("identifier", identifier), zap.Error(err))
		}
	}
}

// Clear deletes the attempt counter unconditionally.
func (g *LockoutGuard) Clear(ctx context.Context, identifier string) {
	if g.state == nil {
		return
	}

	if err := g.state.Del(ctx, lockoutKey(identifier)); err != nil {
		g.logger.Warn("Failed to clear login failures",
			zap.String("identifier", identifier), zap.Error(err))
	}
}
