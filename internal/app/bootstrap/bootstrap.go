package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	bannerservice "vitrine/contexts/merchandising/banner-service"
	bannermemory "vitrine/contexts/merchandising/banner-service/adapters/memory"
	postgresadapter "vitrine/contexts/merchandising/banner-service/adapters/postgres"
	workerapp "vitrine/contexts/merchandising/banner-service/application/workers"
	mediauploadservice "vitrine/contexts/merchandising/media-upload-service"
	"vitrine/internal/platform/config"
	"vitrine/internal/platform/db"
	"vitrine/internal/platform/httpserver"
	"vitrine/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	enabled      bool
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	bus := messaging.NewBroadcast(logger)
	uploads := mediauploadservice.NewInMemoryModule(logger)

	var banners bannerservice.Module
	var pg *db.Postgres
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Info("no postgres dsn configured, using in-memory banner store",
			"event", "bootstrap_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		banners = bannerservice.NewInMemoryModule(logger)
	} else {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		if err := repo.Migrate(); err != nil {
			_ = pg.Close()
			return nil, err
		}
		if err := repo.SeedRecords(context.Background(), bannermemory.DefaultRecords(time.Now().UTC())); err != nil {
			_ = pg.Close()
			return nil, err
		}
		banners = bannerservice.NewModule(bannerservice.Dependencies{
			Repository: repo,
			Clock:      postgresadapter.SystemClock{},
			Logger:     logger,
		})
	}

	server := httpserver.New(banners, uploads, bus, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run() error {
	return a.server.Start()
}

func (a *APIApp) Close() error {
	return a.postgres.Close()
}

// BuildWorker wires the outbox relay. The relay needs the shared durable
// store, so the worker process requires postgres.
func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBroadcast(logger)
	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: messaging.Publisher{Bus: bus},
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.OutboxRelayInterval,
		enabled:      cfg.EnableOutboxRelay,
		logger:       logger,
	}, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if !w.enabled {
		w.logger.Info("outbox relay disabled, worker idling",
			"event", "worker_relay_disabled",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				w.logger.Warn("outbox relay cycle failed",
					"event", "worker_relay_cycle_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
	}
}

func (w *WorkerApp) Close() error {
	return w.postgres.Close()
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
