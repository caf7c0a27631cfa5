// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, lifecycle, model inference) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/labsight/labsight/internal/config"
	"github.com/labsight/labsight/internal/inference"
	"github.com/labsight/labsight/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, and access to the model server.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Inference inference.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	inf, err := inference.New(&cfg.Models, logger)
	if err != nil {
		return nil, fmt.Errorf("inference init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Inference: inf,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// The model probe runs as a startup hook and gates readiness.
func (i *Infrastructure) Start() error {
	if err := i.Inference.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("inference start failed: %w", err)
	}
	return nil
}
