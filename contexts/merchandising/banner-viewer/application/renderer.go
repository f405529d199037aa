package application

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	"vitrine/contexts/merchandising/banner-service/domain/geometry"
	"vitrine/contexts/merchandising/banner-viewer/ports"
)

// RenderState is what a view draws for one banner slot. The viewport is never
// left empty: media failures switch ImageURL to the placeholder asset.
type RenderState struct {
	ImageURL    string
	MIMEType    string
	Transform   geometry.Transform
	Version     int64
	Loading     bool
	Failed      bool
	Placeholder bool
}

// Renderer is the per-slot view model. It fetches the canonical record,
// mirrors it into the crop-config store, recomputes the affine transform and
// refetches once per change notification for its own slot. A generation
// counter discards responses of superseded fetches, so a refresh racing an
// unmount or a newer refresh can never apply stale state.
type Renderer struct {
	Slot           entities.Slot
	Source         ports.RecordSource
	Configs        *ConfigStore
	Feed           ports.SyncFeed
	Logger         *slog.Logger
	PlaceholderRef string

	mu          sync.Mutex
	generation  uint64
	closed      bool
	unsubscribe func()
	userScaled  bool
	config      entities.CropConfig
	version     int64
	state       RenderState
}

// Mount subscribes to the sync feed and performs the initial fetch. A missing
// feed degrades to manual Refresh calls instead of failing.
func (r *Renderer) Mount(ctx context.Context) error {
	if r.Feed != nil {
		r.mu.Lock()
		r.unsubscribe = r.Feed.SubscribeBannerUpdates(r.onBannerUpdated)
		r.mu.Unlock()
	} else {
		r.logger().Info("sync feed unavailable, renderer degrades to manual refresh",
			"event", "renderer_sync_unavailable",
			"module", "merchandising/banner-viewer",
			"layer", "application",
			"slot", string(r.Slot),
		)
	}
	return r.Refresh(ctx)
}

// Refresh fetches the current record and recomputes the render state. Fetch
// errors surface as a failed state, never as a crash of the render path.
func (r *Renderer) Refresh(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.generation++
	generation := r.generation
	r.state.Loading = true
	r.mu.Unlock()

	record, found, err := r.Source.FetchRecord(ctx, r.Slot)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || generation != r.generation {
		// A newer refresh or Close superseded this response.
		return nil
	}

	switch {
	case err != nil:
		r.applyFetchFailureLocked(ctx, err)
	case found:
		r.applyRecordLocked(ctx, record)
	default:
		r.applyLocalConfigLocked(ctx)
	}
	return nil
}

// HandleMediaLoad feeds back the dimensions of the actually decoded asset,
// guarding against stale stored dimensions. When the user has not chosen a
// zoom yet, the cover scale for the real dimensions is applied.
func (r *Renderer) HandleMediaLoad(ctx context.Context, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.config.NaturalWidth = width
	r.config.NaturalHeight = height
	if !r.userScaled && r.config.Geometry.Mode == entities.GeometryRelative {
		r.config.Geometry.Scale = geometry.MinScale(width, height)
	}
	r.config.Geometry = geometry.Clamp(r.config.Geometry, width, height)
	r.state.Transform = geometry.Compute(r.config.Geometry)
	r.persistConfigLocked(ctx)
}

// HandleMediaError switches to the placeholder asset. The viewport is never
// left empty.
func (r *Renderer) HandleMediaError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.state.Placeholder = true
	r.state.ImageURL = r.placeholderRef()
	r.state.MIMEType = "image/jpeg"
	r.state.Transform = geometry.Compute(entities.Geometry{Mode: entities.GeometryRelative, Scale: 1})
	reason := "media load failed"
	if err != nil {
		reason = err.Error()
	}
	r.logger().Warn("banner media failed, falling back to placeholder",
		"event", "renderer_media_failed",
		"module", "merchandising/banner-viewer",
		"layer", "application",
		"slot", string(r.Slot),
		"error", reason,
	)
}

func (r *Renderer) State() RenderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close unsubscribes and invalidates in-flight fetches.
func (r *Renderer) Close() {
	r.mu.Lock()
	r.closed = true
	r.generation++
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// onBannerUpdated triggers exactly one refetch per notification for this
// renderer's own slot. Notifications at or below the rendered version are
// stale and skipped.
func (r *Renderer) onBannerUpdated(update ports.BannerUpdate) {
	if update.ID != string(r.Slot) {
		return
	}
	r.mu.Lock()
	if r.closed || (update.Version != 0 && update.Version <= r.version) {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	_ = r.Refresh(context.Background())
}

func (r *Renderer) applyRecordLocked(ctx context.Context, record entities.Record) {
	r.config = entities.CropConfig{
		Slot:           record.Slot,
		ImageRef:       record.ImageRef,
		Geometry:       record.Geometry,
		NaturalWidth:   record.NaturalWidth,
		NaturalHeight:  record.NaturalHeight,
		ViewportWidth:  entities.ViewportWidth,
		ViewportHeight: entities.ViewportHeight,
	}
	r.userScaled = true
	r.version = record.Version
	r.state = RenderState{
		ImageURL:  cacheBustedURL(record.ImageRef, record.Version),
		MIMEType:  record.MIMEType,
		Transform: geometry.Compute(record.Geometry),
		Version:   record.Version,
	}
	r.persistConfigLocked(ctx)
}

// applyLocalConfigLocked serves the slot from the local config store; when
// nothing exists anywhere it synthesizes the default full-image config and
// persists it once so future loads are stable.
func (r *Renderer) applyLocalConfigLocked(ctx context.Context) {
	if r.Configs != nil {
		if config, found, err := r.Configs.Load(ctx, r.Slot); err == nil && found {
			r.config = config
			r.version = 0
			r.state = RenderState{
				ImageURL:    config.ImageRef,
				Transform:   geometry.Compute(config.Geometry),
				Placeholder: config.ImageRef == r.placeholderRef(),
			}
			return
		}
	}

	r.config = entities.CropConfig{
		Slot:           r.Slot,
		ImageRef:       r.placeholderRef(),
		Geometry:       entities.Geometry{Mode: entities.GeometryRelative, Scale: 1},
		NaturalWidth:   1920,
		NaturalHeight:  1080,
		ViewportWidth:  entities.ViewportWidth,
		ViewportHeight: entities.ViewportHeight,
	}
	r.userScaled = false
	r.version = 0
	r.state = RenderState{
		ImageURL:    r.placeholderRef(),
		MIMEType:    "image/jpeg",
		Transform:   geometry.Compute(r.config.Geometry),
		Placeholder: true,
	}
	r.persistConfigLocked(ctx)
}

func (r *Renderer) applyFetchFailureLocked(ctx context.Context, err error) {
	r.logger().Warn("banner fetch failed",
		"event", "renderer_fetch_failed",
		"module", "merchandising/banner-viewer",
		"layer", "application",
		"slot", string(r.Slot),
		"error", err.Error(),
	)
	if r.Configs != nil {
		if config, found, loadErr := r.Configs.Load(ctx, r.Slot); loadErr == nil && found {
			r.config = config
			r.state = RenderState{
				ImageURL:  config.ImageRef,
				Transform: geometry.Compute(config.Geometry),
				Failed:    true,
			}
			return
		}
	}
	r.state = RenderState{
		ImageURL:    r.placeholderRef(),
		MIMEType:    "image/jpeg",
		Transform:   geometry.Compute(entities.Geometry{Mode: entities.GeometryRelative, Scale: 1}),
		Failed:      true,
		Placeholder: true,
	}
}

func (r *Renderer) persistConfigLocked(ctx context.Context) {
	if r.Configs == nil {
		return
	}
	if err := r.Configs.Save(ctx, r.config); err != nil {
		r.logger().Warn("crop config save failed",
			"event", "renderer_config_save_failed",
			"module", "merchandising/banner-viewer",
			"layer", "application",
			"slot", string(r.Slot),
			"error", err.Error(),
		)
	}
}

func (r *Renderer) placeholderRef() string {
	if r.PlaceholderRef != "" {
		return r.PlaceholderRef
	}
	return "/media/defaults/" + string(r.Slot) + ".jpg"
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func cacheBustedURL(ref string, version int64) string {
	if version <= 0 {
		return ref
	}
	separator := "?"
	if strings.Contains(ref, "?") {
		separator = "&"
	}
	return ref + separator + "v=" + strconv.FormatInt(version, 10)
}
