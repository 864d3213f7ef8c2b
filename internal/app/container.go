package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nferro/embeddingd/internal/config"
	"github.com/nferro/embeddingd/internal/embedder"
	"github.com/nferro/embeddingd/internal/observability"
)

// Container aggregates runtime dependencies for handlers.
type Container struct {
	Config        *config.Config
	Model         *embedder.Handle
	Observability *observability.Provider
	// InstanceID identifies this process in service metadata and logs.
	InstanceID string
}

// NewContainer builds a dependency container from the provided
// configuration. The model handle is constructed here but not opened;
// callers open it before serving traffic.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	obs, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	handle := embedder.NewHandle(embedder.HandleConfig{
		Path:           cfg.Model.Path,
		Dimensions:     cfg.Model.Dimensions,
		MaxConcurrency: cfg.Model.MaxConcurrency,
		Timeout:        cfg.Server.RequestTimeout,
		Warmup:         cfg.Model.Warmup,
	})

	return &Container{
		Config:        cfg,
		Model:         handle,
		Observability: obs,
		InstanceID:    uuid.NewString(),
	}, nil
}
