package unit

import (
	"context"
	"sync"
	"testing"

	bannerservice "vitrine/contexts/merchandising/banner-service"
	"vitrine/contexts/merchandising/banner-service/application/workers"
	"vitrine/contexts/merchandising/banner-service/domain/entities"
	bannerports "vitrine/contexts/merchandising/banner-service/ports"
	httptransport "vitrine/contexts/merchandising/banner-service/transport/http"
	bannerviewer "vitrine/contexts/merchandising/banner-viewer"
	"vitrine/contexts/merchandising/banner-viewer/adapters/broadcastfeed"
	viewerports "vitrine/contexts/merchandising/banner-viewer/ports"
	"vitrine/internal/platform/messaging"
)

// moduleSource serves the viewer straight from the banner module, standing in
// for the HTTP client in-process.
type moduleSource struct {
	module bannerservice.Module

	mu      sync.Mutex
	fetches map[entities.Slot]int
}

func newModuleSource(module bannerservice.Module) *moduleSource {
	return &moduleSource{module: module, fetches: make(map[entities.Slot]int)}
}

func (s *moduleSource) FetchRecord(ctx context.Context, slot entities.Slot) (entities.Record, bool, error) {
	s.mu.Lock()
	s.fetches[slot]++
	s.mu.Unlock()

	record, err := s.module.Store.GetRecord(ctx, slot)
	if err != nil {
		return entities.Record{}, false, nil
	}
	return record, true, nil
}

func (s *moduleSource) fetchCount(slot entities.Slot) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[slot]
}

func updateHot(t *testing.T, module bannerservice.Module) httptransport.BannerResponse {
	t.Helper()
	resp, err := module.Handler.UpdateBannerHandler(context.Background(), "hot", httptransport.UpdateBannerRequest{
		ImageRef:      "/media/abc123.jpg",
		MIMEType:      "image/jpeg",
		NaturalWidth:  1920,
		NaturalHeight: 1080,
		Scale:         1.2,
	})
	if err != nil {
		t.Fatalf("update hot failed: %v", err)
	}
	return resp
}

func TestEditFansOutToOtherRenderersOnly(t *testing.T) {
	banners := bannerservice.NewInMemoryModule(nil)
	bus := messaging.NewBroadcast(nil)
	source := newModuleSource(banners)
	viewer := bannerviewer.NewInMemoryModule(source, broadcastfeed.Feed{Bus: bus}, nil)

	hot := viewer.NewRenderer(entities.SlotHot)
	hero := viewer.NewRenderer(entities.SlotHero)
	if err := hot.Mount(context.Background()); err != nil {
		t.Fatalf("mount hot failed: %v", err)
	}
	if err := hero.Mount(context.Background()); err != nil {
		t.Fatalf("mount hero failed: %v", err)
	}

	resp := updateHot(t, banners)

	hotBefore := source.fetchCount(entities.SlotHot)
	heroBefore := source.fetchCount(entities.SlotHero)

	// The editor's own publish path: fan the change out on the bus the way
	// the HTTP layer does after a successful PUT.
	err := bus.Publish(context.Background(), nil, bannerports.TopicBannerUpdated, bannerports.EventEnvelope{
		EventID:   "evt-sync-1",
		EventType: bannerports.TopicBannerUpdated,
		Payload:   bannerports.BannerUpdatedPayload{ID: resp.Data.ID, Version: resp.Data.Version},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if got := source.fetchCount(entities.SlotHot) - hotBefore; got != 1 {
		t.Fatalf("expected the hot renderer to refetch exactly once, got %d", got)
	}
	if got := source.fetchCount(entities.SlotHero) - heroBefore; got != 0 {
		t.Fatalf("the hero renderer must ignore a hot update, got %d fetches", got)
	}
	if hot.State().Version != resp.Data.Version {
		t.Fatalf("expected hot renderer at version %d, got %d", resp.Data.Version, hot.State().Version)
	}
}

func TestOutboxRelayDeliversEditToSubscribers(t *testing.T) {
	banners := bannerservice.NewInMemoryModule(nil)
	bus := messaging.NewBroadcast(nil)
	feed := broadcastfeed.Feed{Bus: bus}

	var updates []viewerports.BannerUpdate
	unsubscribe := feed.SubscribeBannerUpdates(func(update viewerports.BannerUpdate) {
		updates = append(updates, update)
	})
	defer unsubscribe()

	resp := updateHot(t, banners)

	relay := workers.OutboxRelay{
		Outbox:    banners.Store,
		Publisher: messaging.Publisher{Bus: bus},
		Clock:     banners.Store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay cycle failed: %v", err)
	}

	if len(updates) != 1 {
		t.Fatalf("expected one relayed update, got %d", len(updates))
	}
	if updates[0].ID != "hot" || updates[0].Version != resp.Data.Version {
		t.Fatalf("unexpected update %+v", updates[0])
	}

	// A second cycle finds nothing pending and publishes nothing.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay cycle failed: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("relay must not republish sent events, got %d updates", len(updates))
	}
}

func TestViewerMirrorsRecordAndStopsAfterClose(t *testing.T) {
	banners := bannerservice.NewInMemoryModule(nil)
	bus := messaging.NewBroadcast(nil)
	source := newModuleSource(banners)
	viewer := bannerviewer.NewInMemoryModule(source, broadcastfeed.Feed{Bus: bus}, nil)

	renderer := viewer.NewRenderer(entities.SlotFooter)
	if err := renderer.Mount(context.Background()); err != nil {
		t.Fatalf("mount failed: %v", err)
	}
	if renderer.State().ImageURL == "" {
		t.Fatal("viewport must never be empty")
	}

	// Mirrored config is durable in the viewer's local store.
	if _, found, err := viewer.Configs.Load(context.Background(), entities.SlotFooter); err != nil || !found {
		t.Fatalf("expected mirrored config after mount, got found=%v err=%v", found, err)
	}

	renderer.Close()
	if err := bus.Publish(context.Background(), nil, bannerports.TopicBannerUpdated, bannerports.EventEnvelope{
		Payload: bannerports.BannerUpdatedPayload{ID: "footer", Version: 99},
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if got := source.fetchCount(entities.SlotFooter); got != 1 {
		t.Fatalf("closed renderer must not refetch, got %d fetches", got)
	}
}
