package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	domainerrors "vitrine/contexts/merchandising/banner-service/domain/errors"
	"vitrine/contexts/merchandising/banner-service/ports"
	"vitrine/internal/shared/events"

	"github.com/google/uuid"
)

// Store keeps the canonical records for the fixed slots in process memory.
// ReplaceRecord performs the version compare-and-swap under the write lock,
// so two racing edits can never both advance from the same base version.
type Store struct {
	mu      sync.RWMutex
	records map[entities.Slot]entities.Record
	outbox  []ports.OutboxMessage
}

func NewStore() *Store {
	return &Store{
		records: make(map[entities.Slot]entities.Record),
	}
}

// NewSeededStore returns a store pre-populated with the default record for
// every fixed slot: full image visible, scale 1, version 1.
func NewSeededStore(now time.Time) *Store {
	store := NewStore()
	_ = store.SeedRecords(context.Background(), DefaultRecords(now))
	return store
}

// DefaultRecords builds the initial record set for the three fixed slots.
func DefaultRecords(now time.Time) []entities.Record {
	defaults := make([]entities.Record, 0, len(entities.AllSlots()))
	for _, slot := range entities.AllSlots() {
		defaults = append(defaults, entities.Record{
			Slot:          slot,
			ImageRef:      "/media/defaults/" + string(slot) + ".jpg",
			MIMEType:      "image/jpeg",
			NaturalWidth:  1920,
			NaturalHeight: 1080,
			Geometry: entities.Geometry{
				Mode:  entities.GeometryRelative,
				Scale: 1,
			},
			Version:   1,
			Published: true,
			UpdatedAt: now.UTC(),
		})
	}
	return defaults
}

func (s *Store) GetRecord(_ context.Context, slot entities.Slot) (entities.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[slot]
	if !ok {
		return entities.Record{}, domainerrors.ErrNotFound
	}
	return record, nil
}

func (s *Store) ListRecords(_ context.Context, slots []entities.Slot) ([]entities.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make([]entities.Record, 0, len(slots))
	for _, slot := range slots {
		if record, ok := s.records[slot]; ok {
			found = append(found, record)
		}
	}
	return found, nil
}

func (s *Store) ReplaceRecord(_ context.Context, record entities.Record, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[record.Slot]
	if !ok {
		return domainerrors.ErrNotFound
	}
	if current.Version != expectedVersion {
		return domainerrors.ErrVersionConflict
	}

	s.records[record.Slot] = record
	s.appendOutboxLocked(record)
	return nil
}

func (s *Store) SeedRecords(_ context.Context, records []entities.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if _, exists := s.records[record.Slot]; exists {
			continue
		}
		s.records[record.Slot] = record
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.outbox) {
		limit = len(s.outbox)
	}
	pending := make([]ports.OutboxMessage, 0, limit)
	for _, message := range s.outbox {
		if message.Status != "pending" {
			continue
		}
		pending = append(pending, message)
		if len(pending) == limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			s.outbox[i].Status = "published"
			return nil
		}
	}
	return domainerrors.ErrNotFound
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

// appendOutboxLocked records the banner:updated event in the same critical
// section as the record swap, mirroring the transactional outbox write of the
// durable backend.
func (s *Store) appendOutboxLocked(record entities.Record) {
	envelope := events.Envelope{
		EventID:        uuid.NewString(),
		EventType:      ports.TopicBannerUpdated,
		SourceService:  "vitrine",
		OccurredAtUTC:  record.UpdatedAt,
		EntityType:     "banner",
		EntityID:       string(record.Slot),
		PayloadVersion: 1,
		Payload: ports.BannerUpdatedPayload{
			ID:      string(record.Slot),
			Version: record.Version,
		},
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	s.outbox = append(s.outbox, ports.OutboxMessage{
		OutboxID:  uuid.NewString(),
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    "pending",
		CreatedAt: record.UpdatedAt,
	})
}
