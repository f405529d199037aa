package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	"vitrine/contexts/merchandising/banner-viewer/ports"
)

const (
	configKeyPrefix = "banner-crop-"
	legacyListKey   = "banners"
)

// ConfigStore caches one CropConfig per slot over a durable key-value
// backend. Once the cache holds a value it is the source of truth for the
// session; a failed backend write is logged and tolerated.
type ConfigStore struct {
	Backend ports.ConfigBackend
	Clock   ports.Clock
	Logger  *slog.Logger

	mu    sync.RWMutex
	cache map[entities.Slot]entities.CropConfig
}

func NewConfigStore(backend ports.ConfigBackend, clock ports.Clock, logger *slog.Logger) *ConfigStore {
	return &ConfigStore{
		Backend: backend,
		Clock:   clock,
		Logger:  logger,
		cache:   make(map[entities.Slot]entities.CropConfig),
	}
}

// storedConfig is the serialized shape under "banner-crop-<id>" keys.
type storedConfig struct {
	ID             string  `json:"id"`
	ImageRef       string  `json:"image_ref"`
	GeometryMode   string  `json:"geometry_mode"`
	Scale          float64 `json:"scale"`
	TranslateX     float64 `json:"translate_x"`
	TranslateY     float64 `json:"translate_y"`
	CropX          float64 `json:"crop_x,omitempty"`
	CropY          float64 `json:"crop_y,omitempty"`
	CropWidth      float64 `json:"crop_width,omitempty"`
	CropHeight     float64 `json:"crop_height,omitempty"`
	Rotation       float64 `json:"rotation,omitempty"`
	NaturalWidth   int     `json:"natural_width"`
	NaturalHeight  int     `json:"natural_height"`
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
	SavedAt        string  `json:"saved_at"`
}

// legacyBanner is the pre-migration descriptor shape: one JSON array under a
// single "banners" key, pixel-space crop box, no mode tag.
type legacyBanner struct {
	ID       string  `json:"id"`
	Image    string  `json:"image"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Save writes to the cache first, then to the durable backend. A subsequent
// Load in this process observes the new value even when the backend write
// fails.
func (s *ConfigStore) Save(ctx context.Context, config entities.CropConfig) error {
	if config.SavedAt.IsZero() {
		config.SavedAt = s.now()
	}
	if config.ViewportWidth == 0 {
		config.ViewportWidth = entities.ViewportWidth
	}
	if config.ViewportHeight == 0 {
		config.ViewportHeight = entities.ViewportHeight
	}

	s.mu.Lock()
	s.cache[config.Slot] = config
	s.mu.Unlock()

	raw, err := json.Marshal(toStoredConfig(config))
	if err != nil {
		return err
	}
	if err := s.Backend.Set(ctx, configKeyPrefix+string(config.Slot), raw); err != nil {
		s.logger().Warn("crop config persist failed, cache remains authoritative",
			"event", "crop_config_persist_failed",
			"module", "merchandising/banner-viewer",
			"layer", "application",
			"slot", string(config.Slot),
			"error", err.Error(),
		)
	}
	return nil
}

// Load returns the cached config, falling back to the durable backend and
// then to the legacy descriptor array. The boolean is false when the slot has
// no config anywhere.
func (s *ConfigStore) Load(ctx context.Context, slot entities.Slot) (entities.CropConfig, bool, error) {
	s.mu.RLock()
	cached, ok := s.cache[slot]
	s.mu.RUnlock()
	if ok {
		return cached, true, nil
	}

	raw, found, err := s.Backend.Get(ctx, configKeyPrefix+string(slot))
	if err != nil {
		return entities.CropConfig{}, false, err
	}
	if found {
		var stored storedConfig
		if err := json.Unmarshal(raw, &stored); err == nil {
			config := fromStoredConfig(slot, stored)
			s.mu.Lock()
			s.cache[slot] = config
			s.mu.Unlock()
			return config, true, nil
		}
		s.logger().Warn("stored crop config unreadable, probing legacy format",
			"event", "crop_config_decode_failed",
			"module", "merchandising/banner-viewer",
			"layer", "application",
			"slot", string(slot),
		)
	}

	config, found, err := s.loadLegacy(ctx, slot)
	if err != nil || !found {
		return entities.CropConfig{}, false, err
	}
	s.mu.Lock()
	s.cache[slot] = config
	s.mu.Unlock()
	return config, true, nil
}

// Clear removes the slot's config from the cache and the backend.
func (s *ConfigStore) Clear(ctx context.Context, slot entities.Slot) error {
	s.mu.Lock()
	delete(s.cache, slot)
	s.mu.Unlock()
	return s.Backend.Delete(ctx, configKeyPrefix+string(slot))
}

// loadLegacy probes the pre-migration single-array format. Legacy data is
// only read and converted; it is never written back in legacy form.
func (s *ConfigStore) loadLegacy(ctx context.Context, slot entities.Slot) (entities.CropConfig, bool, error) {
	raw, found, err := s.Backend.Get(ctx, legacyListKey)
	if err != nil || !found {
		return entities.CropConfig{}, false, err
	}
	var descriptors []legacyBanner
	if err := json.Unmarshal(raw, &descriptors); err != nil {
		return entities.CropConfig{}, false, nil
	}
	for _, descriptor := range descriptors {
		if descriptor.ID != string(slot) {
			continue
		}
		return entities.CropConfig{
			Slot:     slot,
			ImageRef: descriptor.Image,
			Geometry: entities.Geometry{
				Mode:       entities.GeometryAbsolute,
				Scale:      1,
				CropX:      descriptor.X,
				CropY:      descriptor.Y,
				CropWidth:  descriptor.Width,
				CropHeight: descriptor.Height,
				Rotation:   descriptor.Rotation,
			},
			ViewportWidth:  entities.ViewportWidth,
			ViewportHeight: entities.ViewportHeight,
			SavedAt:        s.now(),
		}, true, nil
	}
	return entities.CropConfig{}, false, nil
}

func (s *ConfigStore) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *ConfigStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func toStoredConfig(config entities.CropConfig) storedConfig {
	return storedConfig{
		ID:             string(config.Slot),
		ImageRef:       config.ImageRef,
		GeometryMode:   string(config.Geometry.Mode),
		Scale:          config.Geometry.Scale,
		TranslateX:     config.Geometry.TranslateX,
		TranslateY:     config.Geometry.TranslateY,
		CropX:          config.Geometry.CropX,
		CropY:          config.Geometry.CropY,
		CropWidth:      config.Geometry.CropWidth,
		CropHeight:     config.Geometry.CropHeight,
		Rotation:       config.Geometry.Rotation,
		NaturalWidth:   config.NaturalWidth,
		NaturalHeight:  config.NaturalHeight,
		ViewportWidth:  config.ViewportWidth,
		ViewportHeight: config.ViewportHeight,
		SavedAt:        config.SavedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromStoredConfig(slot entities.Slot, stored storedConfig) entities.CropConfig {
	savedAt, _ := time.Parse(time.RFC3339Nano, stored.SavedAt)
	mode := entities.GeometryMode(stored.GeometryMode)
	if mode != entities.GeometryAbsolute {
		mode = entities.GeometryRelative
	}
	return entities.CropConfig{
		Slot:     slot,
		ImageRef: stored.ImageRef,
		Geometry: entities.Geometry{
			Mode:       mode,
			Scale:      stored.Scale,
			TranslateX: stored.TranslateX,
			TranslateY: stored.TranslateY,
			CropX:      stored.CropX,
			CropY:      stored.CropY,
			CropWidth:  stored.CropWidth,
			CropHeight: stored.CropHeight,
			Rotation:   stored.Rotation,
		},
		NaturalWidth:   stored.NaturalWidth,
		NaturalHeight:  stored.NaturalHeight,
		ViewportWidth:  stored.ViewportWidth,
		ViewportHeight: stored.ViewportHeight,
		SavedAt:        savedAt,
	}
}
