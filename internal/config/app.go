package config

const EnvAppBasePath = "LABSIGHT_APP_BASE_PATH"

// AppConfig holds settings for the browser UI module.
type AppConfig struct {
	BasePath string `toml:"base_path"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AppConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/app"
	}
	envString(EnvAppBasePath, &c.BasePath)
	return validateBasePath(c.BasePath)
}

// Merge overwrites non-zero fields from overlay.
func (c *AppConfig) Merge(overlay *AppConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
}
