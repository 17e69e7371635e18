package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ent0n29/todolist/internal/config"
	"github.com/ent0n29/todolist/internal/httpapi"
	"github.com/ent0n29/todolist/internal/observability"
	"github.com/ent0n29/todolist/internal/todos"
)

type BuildResult struct {
	Config  config.Config
	API     *httpapi.Server
	Store   todos.Store
	Metrics *observability.Metrics
	Backend string

	// Cleanup should be called on shutdown to release the store connection.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger *log.Logger) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := todos.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("todo store init failed: %w", err)
	}
	backend := todos.Backend(cfg.DatabaseURL)
	logger.Info("todo store ready", "backend", backend)

	api := httpapi.New(cfg, store, metrics, logger)

	return &BuildResult{
		Config:  cfg,
		API:     api,
		Store:   store,
		Metrics: metrics,
		Backend: backend,
		Cleanup: store.Close,
	}, nil
}
