package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types emitted on the tag events topic.
const (
	TagCreated = "tag.created"
	TagDeleted = "tag.deleted"
	TagPurged  = "tag.purged"
	TagClaimed = "tag.claimed"
)

// TagEvent is the payload written to kafka for tag lifecycle changes.
type TagEvent struct {
	Type    string    `json:"type"`
	SpaceID int64     `json:"space_id"`
	Name    string    `json:"name,omitempty"`
	ActorID int64     `json:"actor_id"`
	Count   int64     `json:"count,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher writes tag lifecycle events. A nil Publisher drops them,
// mirroring how kafka is optional in the deployment.
type Publisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewPublisher creates a publisher over an existing kafka writer.
func NewPublisher(writer *kafka.Writer, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// Publish writes one event. Delivery failures are logged, not surfaced;
// events are advisory and must never fail the operation that caused them.
func (p *Publisher) Publish(ctx context.Context, event TagEvent) {
	if p == nil || p.writer == nil {
		return
	}

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to encode tag event", zap.Error(err), zap.String("type", event.Type))
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.Name),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish tag event", zap.Error(err), zap.String("type", event.Type))
	}
}
