package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"vitrine/contexts/merchandising/banner-service/ports"
)

// OutboxRelay drains pending banner events and publishes them on the
// broadcast bus. It is the durable notification path: listeners in other
// processes see edits even when the in-request publish was lost.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("outbox list pending failed",
			"event", "banner_outbox_list_failed",
			"module", "merchandising/banner-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, message := range pending {
		var envelope ports.EventEnvelope
		if err := json.Unmarshal(message.Payload, &envelope); err != nil {
			logger.Error("outbox payload decode failed",
				"event", "banner_outbox_decode_failed",
				"module", "merchandising/banner-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}

		if err := r.Publisher.Publish(ctx, ports.TopicBannerUpdated, envelope); err != nil {
			logger.Error("outbox publish failed",
				"event", "banner_outbox_publish_failed",
				"module", "merchandising/banner-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"event_id", envelope.EventID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxSent(ctx, message.OutboxID, now); err != nil {
			logger.Error("outbox mark sent failed",
				"event", "banner_outbox_mark_sent_failed",
				"module", "merchandising/banner-service",
				"layer", "worker",
				"outbox_id", message.OutboxID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(pending) > 0 {
		logger.Info("outbox relay cycle completed",
			"event", "banner_outbox_relay_completed",
			"module", "merchandising/banner-service",
			"layer", "worker",
			"published", len(pending),
		)
	}
	return nil
}
