// Package events publishes durable domain events for persisted transactions.
// Delivery is at-least-once and best-effort: the ledger row is already
// durable when publishing happens, so a failed publish degrades to a logged
// warning rather than failing the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// TransactionCreated is emitted once per persisted COMPLETED transaction.
	TransactionCreated = "TRANSACTION_CREATED"
)

// ActionEvent is the wire envelope for entity lifecycle events.
type ActionEvent struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	EntityType string    `json:"entityType"`
	Payload    any       `json:"payload"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewActionEvent builds an envelope with a fresh event id and timestamp.
func NewActionEvent(eventType, entityType string, payload any) ActionEvent {
	return ActionEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		EntityType: entityType,
		Payload:    payload,
		Timestamp:  time.Now().UTC(),
	}
}

// Publisher appends serialized events to a Redis stream. Per-key ordering is
// whatever the transport preserves; nothing here guarantees it.
type Publisher struct {
	client *redis.Client
	stream string
	log    zerolog.Logger
}

func NewPublisher(client *redis.Client, stream string, log zerolog.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		log:    log.With().Str("component", "publisher").Str("stream", stream).Logger(),
	}
}

// Publish serializes event and appends it to the stream under key.
func (p *Publisher) Publish(ctx context.Context, key string, event ActionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"key":   key,
			"event": payload,
		},
	}
	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Debug().Str("key", key).Str("eventType", event.EventType).Msg("event published")
	return nil
}
