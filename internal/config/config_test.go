package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/labsight/labsight/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "127.0.0.1"
port = 8080
write_timeout = "5m"

[api]
base_path = "/api"
max_upload_size = "10MB"

[api.cors]
enabled = true
origins = ["http://localhost:5173"]

[app]
base_path = "/app"

[models]
provider = "ollama"
base_url = "http://localhost:11434"
vision = "llama3.2-vision:11b"
text = "qwen2.5vl:32b"

[pipeline]
max_concurrent = 3
`

const overlayConfig = `
[server]
port = 9090

[models]
text = "llama3.1:8b"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("server addr: got %s", cfg.Server.Addr())
	}
	if cfg.Server.WriteTimeoutDuration() != 5*time.Minute {
		t.Errorf("write timeout: got %v, want 5m", cfg.Server.WriteTimeoutDuration())
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if !cfg.API.CORS.Enabled || len(cfg.API.CORS.Origins) != 1 {
		t.Errorf("cors: got %+v", cfg.API.CORS)
	}
	if cfg.Models.Vision != "llama3.2-vision:11b" {
		t.Errorf("vision model: got %s", cfg.Models.Vision)
	}
	if cfg.Pipeline.MaxConcurrent != 3 {
		t.Errorf("max concurrent: got %d, want 3", cfg.Pipeline.MaxConcurrent)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv(config.EnvLabsightEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Models.Text != "llama3.1:8b" {
		t.Errorf("text model: got %s, want llama3.1:8b (from overlay)", cfg.Models.Text)
	}
	if cfg.Models.Vision != "llama3.2-vision:11b" {
		t.Errorf("vision model: got %s (from base)", cfg.Models.Vision)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	chdir(t, dir)

	t.Setenv(config.EnvLabsightVersion, "2.0.0")
	t.Setenv(config.EnvServerPort, "3000")
	t.Setenv(config.EnvModelsBaseURL, "http://gpu-box:11434")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Models.BaseURL != "http://gpu-box:11434" {
		t.Errorf("base url: got %s", cfg.Models.BaseURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.DotEnvFile, "LABSIGHT_MODELS_TEXT=from-dotenv\n")
	chdir(t, dir)
	t.Cleanup(func() { os.Unsetenv(config.EnvModelsText) })

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Models.Text != "from-dotenv" {
		t.Errorf("text model: got %s, want from-dotenv", cfg.Models.Text)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/api" || cfg.App.BasePath != "/app" {
		t.Errorf("base paths: got %s, %s", cfg.API.BasePath, cfg.App.BasePath)
	}
	if cfg.Models.Provider != "ollama" {
		t.Errorf("provider default: got %s", cfg.Models.Provider)
	}
	if cfg.API.MaxUploadSizeBytes() != 20*1024*1024 {
		t.Errorf("max upload default: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Pipeline.MaxConcurrent != 2 {
		t.Errorf("max concurrent default: got %d", cfg.Pipeline.MaxConcurrent)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name   string
		envVar string
		value  string
	}{
		{"bad port", config.EnvServerPort, "70000"},
		{"bad timeout", config.EnvServerReadTimeout, "soon"},
		{"bad upload size", config.EnvAPIMaxUploadSize, "lots"},
		{"nested base path", config.EnvAPIBasePath, "/api/v1"},
		{"zero concurrency", config.EnvPipelineMaxConcurrent, "-1"},
		{"colliding base paths", config.EnvAppBasePath, "/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.envVar, tt.value)

			if _, err := config.Load(); err == nil {
				t.Errorf("expected validation error for %s=%s", tt.envVar, tt.value)
			}
		})
	}
}

func TestModelsAgentConfigs(t *testing.T) {
	m := config.ModelsConfig{
		Provider: "ollama",
		BaseURL:  "http://localhost:11434",
		Vision:   "vision-model",
		Text:     "text-model",
		Token:    "secret",
	}

	vision := m.VisionAgent()
	if vision.Model.Name != "vision-model" {
		t.Errorf("vision model: got %s", vision.Model.Name)
	}
	if vision.Provider.BaseURL != "http://localhost:11434" {
		t.Errorf("vision base url: got %s", vision.Provider.BaseURL)
	}

	text := m.TextAgent()
	if text.Model.Name != "text-model" {
		t.Errorf("text model: got %s", text.Model.Name)
	}
	if text.Provider.Options["token"] != "secret" {
		t.Errorf("token option: got %v", text.Provider.Options["token"])
	}
	if text.Name == vision.Name {
		t.Error("agents should have distinct names")
	}
}

func TestModelsTemperature(t *testing.T) {
	m := config.ModelsConfig{}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.Temperature != config.DefaultTemperature {
		t.Errorf("default temperature: got %g, want %g", m.Temperature, config.DefaultTemperature)
	}

	agents := map[string]gaconfig.AgentConfig{"vision": m.VisionAgent(), "text": m.TextAgent()}
	for agent, cfg := range agents {
		for _, capability := range []string{"chat", "vision"} {
			if got := cfg.Model.Capabilities[capability]["temperature"]; got != config.DefaultTemperature {
				t.Errorf("%s agent %s temperature: got %v", agent, capability, got)
			}
		}
	}

	t.Setenv(config.EnvModelsTemperature, "0.4")
	m = config.ModelsConfig{}
	if err := m.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if m.Temperature != 0.4 {
		t.Errorf("env temperature: got %g, want 0.4", m.Temperature)
	}

	t.Setenv(config.EnvModelsTemperature, "3")
	m = config.ModelsConfig{}
	if err := m.Finalize(); err == nil {
		t.Error("expected an error for temperature 3")
	}
}
