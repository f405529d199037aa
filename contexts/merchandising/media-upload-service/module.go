package mediauploadservice

import (
	"log/slog"

	httpadapter "vitrine/contexts/merchandising/media-upload-service/adapters/http"
	"vitrine/contexts/merchandising/media-upload-service/adapters/memory"
	"vitrine/contexts/merchandising/media-upload-service/application"
	"vitrine/contexts/merchandising/media-upload-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Blobs  ports.BlobStore
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Blobs:  deps.Blobs,
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

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Blobs:  store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
