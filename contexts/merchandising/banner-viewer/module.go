package bannerviewer

import (
	"log/slog"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	"vitrine/contexts/merchandising/banner-viewer/adapters/memory"
	"vitrine/contexts/merchandising/banner-viewer/application"
	"vitrine/contexts/merchandising/banner-viewer/ports"
)

type Module struct {
	Configs *application.ConfigStore
	Source  ports.RecordSource
	Feed    ports.SyncFeed
	Logger  *slog.Logger
	Local   *memory.LocalStore
}

type Dependencies struct {
	Source  ports.RecordSource
	Backend ports.ConfigBackend
	Feed    ports.SyncFeed
	Clock   ports.Clock
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Configs: application.NewConfigStore(deps.Backend, deps.Clock, deps.Logger),
		Source:  deps.Source,
		Feed:    deps.Feed,
		Logger:  deps.Logger,
	}
}

// NewInMemoryModule wires the viewer onto the in-process local store.
func NewInMemoryModule(source ports.RecordSource, feed ports.SyncFeed, logger *slog.Logger) Module {
	local := memory.NewLocalStore()
	module := NewModule(Dependencies{
		Source:  source,
		Backend: local,
		Feed:    feed,
		Clock:   local,
		Logger:  logger,
	})
	module.Local = local
	return module
}

// NewRenderer builds the view model for one slot.
func (m Module) NewRenderer(slot entities.Slot) *application.Renderer {
	return &application.Renderer{
		Slot:    slot,
		Source:  m.Source,
		Configs: m.Configs,
		Feed:    m.Feed,
		Logger:  m.Logger,
	}
}
