package api

import (
	"github.com/labsight/labsight/internal/config"
	"github.com/labsight/labsight/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	MaxUploadSize int64
	MaxConcurrent int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Inference: infra.Inference,
		},
		MaxUploadSize: cfg.API.MaxUploadSizeBytes(),
		MaxConcurrent: cfg.Pipeline.MaxConcurrent,
	}
}
