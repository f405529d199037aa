package messaging

import (
	"context"
	"log/slog"
	"sync"

	"vitrine/internal/shared/events"
)

// Broadcast is the process-local fan-out bus behind banner change
// notifications. Delivery is synchronous and at-most-once per subscriber per
// publish; the publisher's own subscription is skipped so an editor never
// reacts to its own write. Ordering per topic follows publish order, which
// upstream serializes per banner slot.
type Broadcast struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[string][]*Subscription
	logger      *slog.Logger
}

// Subscription is the handle returned by Subscribe. Close fully removes the
// handler; a closed subscription receives nothing.
type Subscription struct {
	id      uint64
	topic   string
	bus     *Broadcast
	handler func(events.Envelope)
}

func NewBroadcast(logger *slog.Logger) *Broadcast {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcast{
		subscribers: make(map[string][]*Subscription),
		logger:      logger,
	}
}

func (b *Broadcast) Subscribe(topic string, handler func(events.Envelope)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:      b.nextID,
		topic:   topic,
		bus:     b,
		handler: handler,
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	return sub
}

func (s *Subscription) Close() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()

	subs := s.bus.subscribers[s.topic]
	for i, candidate := range subs {
		if candidate.id == s.id {
			s.bus.subscribers[s.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.bus.subscribers[s.topic]) == 0 {
		delete(s.bus.subscribers, s.topic)
	}
	s.bus = nil
}

// Publish delivers the envelope to every subscriber of the topic except
// origin. Handlers run on the caller's goroutine; the subscriber snapshot is
// taken before invocation so handlers may subscribe or close freely.
func (b *Broadcast) Publish(ctx context.Context, origin *Subscription, topic string, event events.Envelope) error {
	if b == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subscribers[topic]))
	for _, sub := range b.subscribers[topic] {
		if origin != nil && sub.id == origin.id {
			continue
		}
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.handler(event)
	}

	b.logger.Info("event published",
		"event", "broadcast_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"event_type", event.EventType,
		"subscribers", len(targets),
	)
	return nil
}

// Publisher adapts the bus to the per-context EventPublisher ports, pinning
// the origin to "none" so relayed events reach every subscriber.
type Publisher struct {
	Bus *Broadcast
}

func (p Publisher) Publish(ctx context.Context, topic string, event events.Envelope) error {
	if p.Bus == nil {
		return nil
	}
	return p.Bus.Publish(ctx, nil, topic, event)
}
