package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	domainerrors "vitrine/contexts/merchandising/banner-service/domain/errors"
	"vitrine/contexts/merchandising/banner-service/domain/geometry"
	"vitrine/contexts/merchandising/banner-service/ports"
)

// replaceAttempts bounds the compare-and-swap retry loop. A conflict means a
// concurrent edit won the race; the retry rebases this edit on the new
// version instead of silently overwriting it.
const replaceAttempts = 3

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

// Get returns the current record for every requested slot identifier that
// names a seeded slot. Unknown identifiers are dropped, not rejected.
func (s Service) Get(ctx context.Context, rawIDs []string) ([]entities.Record, error) {
	var slots []entities.Slot
	for _, raw := range rawIDs {
		if slot, ok := entities.ParseSlot(raw); ok {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return []entities.Record{}, nil
	}
	return s.Repo.ListRecords(ctx, slots)
}

// Update validates and applies one banner edit, producing the next version of
// the slot's record. Geometry out of range is clamped, never rejected.
func (s Service) Update(ctx context.Context, rawID string, input ports.UpdateInput) (entities.Record, error) {
	slot, ok := entities.ParseSlot(rawID)
	if !ok {
		return entities.Record{}, domainerrors.ErrInvalidSlot
	}
	if strings.TrimSpace(input.ImageRef) == "" ||
		strings.TrimSpace(input.MIMEType) == "" ||
		input.NaturalWidth <= 0 ||
		input.NaturalHeight <= 0 {
		return entities.Record{}, domainerrors.ErrInvalidPayload
	}

	clamped := geometry.Clamp(input.Geometry, input.NaturalWidth, input.NaturalHeight)

	for attempt := 0; attempt < replaceAttempts; attempt++ {
		previous, err := s.Repo.GetRecord(ctx, slot)
		if err != nil {
			return entities.Record{}, err
		}

		next := entities.Record{
			Slot:          slot,
			ImageRef:      strings.TrimSpace(input.ImageRef),
			MIMEType:      strings.TrimSpace(input.MIMEType),
			NaturalWidth:  input.NaturalWidth,
			NaturalHeight: input.NaturalHeight,
			Geometry:      clamped,
			Version:       previous.Version + 1,
			Published:     true,
			UpdatedAt:     s.now(),
		}

		err = s.Repo.ReplaceRecord(ctx, next, previous.Version)
		if err == nil {
			resolveLogger(s.Logger).Info("banner updated",
				"event", "banner_updated",
				"module", "merchandising/banner-service",
				"layer", "application",
				"slot", string(slot),
				"version", next.Version,
			)
			return next, nil
		}
		if !errors.Is(err, domainerrors.ErrVersionConflict) {
			return entities.Record{}, err
		}
		resolveLogger(s.Logger).Warn("banner update lost version race, rebasing",
			"event", "banner_update_conflict",
			"module", "merchandising/banner-service",
			"layer", "application",
			"slot", string(slot),
			"base_version", previous.Version,
			"attempt", attempt+1,
		)
	}
	return entities.Record{}, domainerrors.ErrVersionConflict
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
