package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alchemorsel/mealplanner/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventEnvelope is the JSON message published for a domain event
type EventEnvelope struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventForwarder publishes domain events on a Redis pub/sub channel so other
// instances can react to them
type EventForwarder struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewEventForwarder creates a forwarder publishing on channel
func NewEventForwarder(client redis.UniversalClient, channel string, logger *zap.Logger) *EventForwarder {
	return &EventForwarder{client: client, channel: channel, logger: logger.Named("event-forwarder")}
}

// Handle is a shared.EventHandler
func (f *EventForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", event.EventName(), err)
	}
	msg, err := json.Marshal(EventEnvelope{
		Name:       event.EventName(),
		OccurredAt: event.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	receivers, err := f.client.Publish(ctx, f.channel, msg).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventName(), err)
	}
	f.logger.Debug("Event forwarded",
		zap.String("event", event.EventName()),
		zap.String("channel", f.channel),
		zap.Int64("receivers", receivers))
	return nil
}
