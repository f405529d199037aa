package ports

import (
	"context"
	"encoding/json"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	"vitrine/internal/shared/events"
)

// TopicBannerUpdated is the broadcast topic renderers subscribe to.
const TopicBannerUpdated = "banner:updated"

// EventEnvelope aliases the shared envelope so application code and workers
// depend on this context's ports alone.
type EventEnvelope = events.Envelope

type Clock interface {
	Now() time.Time
}

// UpdateInput carries the media reference and crop geometry of one edit.
type UpdateInput struct {
	ImageRef      string
	MIMEType      string
	NaturalWidth  int
	NaturalHeight int
	Geometry      entities.Geometry
}

// Repository persists canonical banner records. ReplaceRecord is the single
// visible state transition: it must swap the stored record atomically and
// fail with the domain version-conflict error when the stored version no
// longer matches expectedVersion.
type Repository interface {
	GetRecord(ctx context.Context, slot entities.Slot) (entities.Record, error)
	ListRecords(ctx context.Context, slots []entities.Slot) ([]entities.Record, error)
	ReplaceRecord(ctx context.Context, record entities.Record, expectedVersion int64) error
	SeedRecords(ctx context.Context, records []entities.Record) error
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	Status    string
	CreatedAt time.Time
}

// OutboxRepository is the durable event feed the worker relay drains.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// BannerUpdatedPayload is the wire payload of a banner:updated event.
type BannerUpdatedPayload struct {
	ID      string `json:"id"`
	Version int64  `json:"version"`
}

// DecodeBannerUpdated extracts the payload from an envelope regardless of
// whether it still holds the in-process struct or a decoded JSON map.
func DecodeBannerUpdated(env EventEnvelope) (BannerUpdatedPayload, bool) {
	if payload, ok := env.Payload.(BannerUpdatedPayload); ok {
		return payload, true
	}
	raw, err := json.Marshal(env.Payload)
	if err != nil {
		return BannerUpdatedPayload{}, false
	}
	var payload BannerUpdatedPayload
	if err := json.Unmarshal(raw, &payload); err != nil || payload.ID == "" {
		return BannerUpdatedPayload{}, false
	}
	return payload, true
}
