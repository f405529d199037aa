package bannerservice

import (
	"log/slog"
	"time"

	httpadapter "vitrine/contexts/merchandising/banner-service/adapters/http"
	"vitrine/contexts/merchandising/banner-service/adapters/memory"
	"vitrine/contexts/merchandising/banner-service/application"
	"vitrine/contexts/merchandising/banner-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module onto a seeded in-memory store.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewSeededStore(time.Now().UTC())
	module := NewModule(Dependencies{
		Repository: store,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
