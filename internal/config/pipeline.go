package config

import "fmt"

const EnvPipelineMaxConcurrent = "LABSIGHT_PIPELINE_MAX_CONCURRENT"

// PipelineConfig bounds how many analyses may run against the model server at once.
// Each analysis itself is always strictly sequential.
type PipelineConfig struct {
	MaxConcurrent int `toml:"max_concurrent"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 2
	}
	envInt(EnvPipelineMaxConcurrent, &c.MaxConcurrent)

	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1: %d", c.MaxConcurrent)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.MaxConcurrent != 0 {
		c.MaxConcurrent = overlay.MaxConcurrent
	}
}
