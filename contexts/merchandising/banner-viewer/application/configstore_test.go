package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
)

type fakeBackend struct {
	values  map[string][]byte
	getErr  error
	setErr  error
	gets    []string
	sets    []string
	deletes []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{values: make(map[string][]byte)}
}

func (b *fakeBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.gets = append(b.gets, key)
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	value, ok := b.values[key]
	return value, ok, nil
}

func (b *fakeBackend) Set(_ context.Context, key string, value []byte) error {
	b.sets = append(b.sets, key)
	if b.setErr != nil {
		return b.setErr
	}
	b.values[key] = value
	return nil
}

func (b *fakeBackend) Delete(_ context.Context, key string) error {
	b.deletes = append(b.deletes, key)
	delete(b.values, key)
	return nil
}

func heroConfig() entities.CropConfig {
	return entities.CropConfig{
		Slot:     entities.SlotHero,
		ImageRef: "/media/abc123.jpg",
		Geometry: entities.Geometry{
			Mode:       entities.GeometryRelative,
			Scale:      1.2,
			TranslateX: 0.1,
		},
		NaturalWidth:  1920,
		NaturalHeight: 1080,
		SavedAt:       time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC),
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	backend := newFakeBackend()
	store := NewConfigStore(backend, nil, nil)

	if err := store.Save(context.Background(), heroConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, found, err := store.Load(context.Background(), entities.SlotHero)
	if err != nil || !found {
		t.Fatalf("expected config to be found, got found=%v err=%v", found, err)
	}
	want := heroConfig()
	if loaded.ImageRef != want.ImageRef || loaded.Geometry != want.Geometry {
		t.Fatalf("round trip changed the config: %+v", loaded)
	}
	if loaded.ViewportWidth != entities.ViewportWidth || loaded.ViewportHeight != entities.ViewportHeight {
		t.Fatalf("expected viewport defaults to be filled in, got %dx%d", loaded.ViewportWidth, loaded.ViewportHeight)
	}
}

func TestSaveUsesPrefixedKey(t *testing.T) {
	backend := newFakeBackend()
	store := NewConfigStore(backend, nil, nil)

	if err := store.Save(context.Background(), heroConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(backend.sets) != 1 || backend.sets[0] != "banner-crop-hero" {
		t.Fatalf("expected write under banner-crop-hero, got %v", backend.sets)
	}
}

func TestLoadSurvivesBackendWriteFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.setErr = errors.New("quota exceeded")
	store := NewConfigStore(backend, nil, nil)

	if err := store.Save(context.Background(), heroConfig()); err != nil {
		t.Fatalf("save must tolerate a failed backend write, got %v", err)
	}

	loaded, found, err := store.Load(context.Background(), entities.SlotHero)
	if err != nil || !found {
		t.Fatalf("cache must serve after a failed backend write, got found=%v err=%v", found, err)
	}
	if loaded.ImageRef != heroConfig().ImageRef {
		t.Fatalf("unexpected config %+v", loaded)
	}
}

func TestLoadFallsBackToBackend(t *testing.T) {
	backend := newFakeBackend()
	seed := NewConfigStore(backend, nil, nil)
	if err := seed.Save(context.Background(), heroConfig()); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	// A fresh store has a cold cache and must read the durable key.
	store := NewConfigStore(backend, nil, nil)
	loaded, found, err := store.Load(context.Background(), entities.SlotHero)
	if err != nil || !found {
		t.Fatalf("expected durable config, got found=%v err=%v", found, err)
	}
	if loaded.Geometry.Scale != 1.2 {
		t.Fatalf("unexpected scale %f", loaded.Geometry.Scale)
	}
}

func TestLoadMissingSlot(t *testing.T) {
	store := NewConfigStore(newFakeBackend(), nil, nil)
	_, found, err := store.Load(context.Background(), entities.SlotFooter)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if found {
		t.Fatal("expected no config for an untouched slot")
	}
}

func TestLoadConvertsLegacyDescriptorArray(t *testing.T) {
	backend := newFakeBackend()
	legacy, err := json.Marshal([]legacyBanner{
		{ID: "hot", Image: "/media/legacy-hot.jpg", X: 120, Y: 40, Width: 960, Height: 325, Rotation: 15},
		{ID: "hero", Image: "/media/legacy-hero.jpg", X: 0, Y: 0, Width: 1920, Height: 650},
	})
	if err != nil {
		t.Fatalf("marshal legacy array: %v", err)
	}
	backend.values["banners"] = legacy

	store := NewConfigStore(backend, nil, nil)
	loaded, found, err := store.Load(context.Background(), entities.SlotHot)
	if err != nil || !found {
		t.Fatalf("expected legacy config for hot, got found=%v err=%v", found, err)
	}
	if loaded.Geometry.Mode != entities.GeometryAbsolute {
		t.Fatalf("legacy data must convert to absolute mode, got %q", loaded.Geometry.Mode)
	}
	if loaded.Geometry.CropX != 120 || loaded.Geometry.CropWidth != 960 || loaded.Geometry.Rotation != 15 {
		t.Fatalf("legacy crop box lost in conversion: %+v", loaded.Geometry)
	}
	if loaded.ImageRef != "/media/legacy-hot.jpg" {
		t.Fatalf("unexpected image ref %q", loaded.ImageRef)
	}

	// Conversion is read-only: nothing is written back in legacy form.
	if len(backend.sets) != 0 {
		t.Fatalf("legacy probe must not write, got writes %v", backend.sets)
	}
}

func TestLoadLegacyIgnoresOtherSlots(t *testing.T) {
	backend := newFakeBackend()
	legacy, _ := json.Marshal([]legacyBanner{{ID: "hero", Image: "/media/legacy-hero.jpg"}})
	backend.values["banners"] = legacy

	store := NewConfigStore(backend, nil, nil)
	_, found, err := store.Load(context.Background(), entities.SlotFooter)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if found {
		t.Fatal("expected no config when the legacy array lacks the slot")
	}
}

func TestClearRemovesCacheAndBackendKey(t *testing.T) {
	backend := newFakeBackend()
	store := NewConfigStore(backend, nil, nil)
	if err := store.Save(context.Background(), heroConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := store.Clear(context.Background(), entities.SlotHero); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(backend.deletes) != 1 || backend.deletes[0] != "banner-crop-hero" {
		t.Fatalf("expected delete of banner-crop-hero, got %v", backend.deletes)
	}
	_, found, err := store.Load(context.Background(), entities.SlotHero)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if found {
		t.Fatal("expected no config after clear")
	}
}

func TestLoadSurfacesBackendReadFailure(t *testing.T) {
	backend := newFakeBackend()
	backend.getErr = errors.New("backend down")
	store := NewConfigStore(backend, nil, nil)

	_, _, err := store.Load(context.Background(), entities.SlotHero)
	if err == nil {
		t.Fatal("expected backend read failure to surface")
	}
}
