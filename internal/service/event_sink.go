package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/teamflow/auth-service/internal/domain"
	"github.com/teamflow/auth-service/pkg/database"
	"go.uber.org/zap"
)

const eventChannel = "auth.events"

// EventSink is the outbound port for best-effort auth notifications.
// Publish never propagates failures to the caller.
type EventSink interface {
	Publish(ctx context.Context, event domain.AuthEvent)
}

// redisEventSink publishes events over Redis pub/sub, fire-and-forget.
type redisEventSink struct {
	redis  *database.Redis
	logger *zap.Logger
}

// NewRedisEventSink creates an event sink over Redis pub/sub.
func NewRedisEventSink(redis *database.Redis, logger *zap.Logger) EventSink {
	return &redisEventSink{redis: redis, logger: logger}
}

func (s *redisEventSink) Publish(ctx context.Context, event domain.AuthEvent) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to encode auth event", zap.Error(err))
		return
	}

	if err := s.redis.Client.Publish(ctx, eventChannel, payload).Err(); err != nil {
		s.logger.Error("Failed to publish auth event",
			zap.String("type", event.Type), zap.Error(err))
	}
}

// noopEventSink drops all events. Used when no Redis is configured.
type noopEventSink struct{}

// NewNoopEventSink creates an event sink that drops everything.
func NewNoopEventSink() EventSink {
	return noopEventSink{}
}

func (noopEventSink) Publish(context.Context, domain.AuthEvent) {}
