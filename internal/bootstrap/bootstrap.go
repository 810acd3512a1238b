// Package bootstrap wires configuration, infrastructure adapters and use
// cases into a runnable application graph shared by the api, worker and mcp
// entrypoints.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/foodlens/meal-vision/internal/config"
	"github.com/foodlens/meal-vision/internal/core/nutrition"
	"github.com/foodlens/meal-vision/internal/core/ports"
	"github.com/foodlens/meal-vision/internal/core/usecase"
	"github.com/foodlens/meal-vision/internal/infrastructure/cache/memory"
	"github.com/foodlens/meal-vision/internal/infrastructure/queue/nats"
	"github.com/foodlens/meal-vision/internal/infrastructure/repository/postgres"
	"github.com/foodlens/meal-vision/internal/infrastructure/resilience"
	"github.com/foodlens/meal-vision/internal/infrastructure/search/searxng"
	"github.com/foodlens/meal-vision/internal/infrastructure/storage/localfs"
	"github.com/foodlens/meal-vision/internal/infrastructure/vision/ollama"
	"github.com/foodlens/meal-vision/internal/observability/logging"
)

type App struct {
	Cfg    config.Config
	Logger *slog.Logger

	DB    *sql.DB
	Repo  *postgres.MealRepository
	Queue *nats.Queue

	Analyzer *usecase.AnalyzeMealUseCase
	Ingestor *usecase.IngestMealPhotoUseCase
	Storage  *localfs.Storage
}

func New(ctx context.Context, service string) (*App, error) {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	repo := postgres.NewMealRepository(db, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init photo storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect queue: %w", err)
	}

	recognizer := ollama.New(cfg.OllamaURL, cfg.OllamaVisionModel, ollama.WithResilienceExecutor(executor))

	var searcher ports.NutritionSearcher
	if cfg.SearchConfigured() {
		searcher = searxng.New(
			cfg.SearchURL,
			nutrition.AllowedDomains(),
			searxng.WithRateLimit(cfg.SearchRatePerSec),
			searxng.WithResilienceExecutor(executor),
		)
	} else {
		logger.Warn("nutrition_search_disabled", "enabled", cfg.SearchEnabled, "url_set", cfg.SearchURL != "")
	}

	resolver := usecase.NewNutritionResolver(
		searcher,
		memory.New(),
		cfg.SearchConfigured(),
		cfg.SearchMaxResults,
		logger,
	)

	analyzer := usecase.NewAnalyzeMealUseCase(storage, recognizer, resolver, repo, logger)
	ingestor := usecase.NewIngestMealPhotoUseCase(storage, queue)

	return &App{
		Cfg:      cfg,
		Logger:   logger,
		DB:       db,
		Repo:     repo,
		Queue:    queue,
		Analyzer: analyzer,
		Ingestor: ingestor,
		Storage:  storage,
	}, nil
}

func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
