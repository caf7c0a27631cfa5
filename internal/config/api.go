package config

import (
	"fmt"
	"strings"

	"github.com/labsight/labsight/pkg/formatting"
	"github.com/labsight/labsight/pkg/middleware"
)

const (
	EnvAPIBasePath      = "LABSIGHT_API_BASE_PATH"
	EnvAPIMaxUploadSize = "LABSIGHT_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "LABSIGHT_CORS_ENABLED",
	Origins:          "LABSIGHT_CORS_ORIGINS",
	AllowedMethods:   "LABSIGHT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "LABSIGHT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "LABSIGHT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "LABSIGHT_CORS_MAX_AGE",
}

// APIConfig holds API routing, upload limits, and CORS settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns MaxUploadSize as a byte count. Finalize guarantees it parses.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay, including nested CORS settings.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "20MB"
	}
}

func (c *APIConfig) loadEnv() {
	envString(EnvAPIBasePath, &c.BasePath)
	envString(EnvAPIMaxUploadSize, &c.MaxUploadSize)
}

func (c *APIConfig) validate() error {
	if err := validateBasePath(c.BasePath); err != nil {
		return err
	}
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive: %s", c.MaxUploadSize)
	}
	return nil
}

func validateBasePath(p string) error {
	if !strings.HasPrefix(p, "/") || len(p) == 1 || strings.Count(p, "/") != 1 {
		return fmt.Errorf("base_path must be a single-level path like /api: %q", p)
	}
	return nil
}
