package config

import (
	"fmt"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/JaimeStill/go-agents/pkg/protocol"
)

const (
	EnvModelsProvider    = "LABSIGHT_MODELS_PROVIDER"
	EnvModelsBaseURL     = "LABSIGHT_MODELS_BASE_URL"
	EnvModelsVision      = "LABSIGHT_MODELS_VISION"
	EnvModelsText        = "LABSIGHT_MODELS_TEXT"
	EnvModelsToken       = "LABSIGHT_MODELS_TOKEN"
	EnvModelsTemperature = "LABSIGHT_MODELS_TEMPERATURE"
)

// DefaultTemperature keeps lab report analysis close to deterministic.
const DefaultTemperature = 0.1

// ModelsConfig identifies the model server and the two models labsight uses:
// a vision-capable model for image reports and a text model for the agent pipeline.
type ModelsConfig struct {
	Provider string `toml:"provider"`
	BaseURL  string `toml:"base_url"`
	Vision   string `toml:"vision"`
	Text     string `toml:"text"`
	Token    string `toml:"token"`

	// Temperature is sent with every chat and vision request.
	Temperature float64 `toml:"temperature"`
}

// VisionAgent returns the go-agents configuration for the vision model.
func (c *ModelsConfig) VisionAgent() gaconfig.AgentConfig {
	return c.agent("labsight-vision", c.Vision)
}

// TextAgent returns the go-agents configuration for the text model.
func (c *ModelsConfig) TextAgent() gaconfig.AgentConfig {
	return c.agent("labsight-text", c.Text)
}

// agent layers the model settings over go-agents defaults.
func (c *ModelsConfig) agent(name, model string) gaconfig.AgentConfig {
	cfg := gaconfig.DefaultAgentConfig()
	cfg.Name = name

	if cfg.Provider == nil {
		cfg.Provider = &gaconfig.ProviderConfig{}
	}
	if cfg.Provider.Options == nil {
		cfg.Provider.Options = make(map[string]any)
	}
	if cfg.Model == nil {
		cfg.Model = &gaconfig.ModelConfig{}
	}

	cfg.Provider.Name = c.Provider
	cfg.Provider.BaseURL = c.BaseURL
	cfg.Model.Name = model
	cfg.Model.Merge(&gaconfig.ModelConfig{
		Capabilities: map[string]map[string]any{
			string(protocol.Chat):   {"temperature": c.Temperature},
			string(protocol.Vision): {"temperature": c.Temperature},
		},
	})

	if c.Token != "" {
		cfg.Provider.Options["token"] = c.Token
	}

	return cfg
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ModelsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ModelsConfig) Merge(overlay *ModelsConfig) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Vision != "" {
		c.Vision = overlay.Vision
	}
	if overlay.Text != "" {
		c.Text = overlay.Text
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
}

func (c *ModelsConfig) loadDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}
	if c.Vision == "" {
		c.Vision = "llama3.2-vision:11b"
	}
	if c.Text == "" {
		c.Text = "qwen2.5vl:32b"
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
}

func (c *ModelsConfig) loadEnv() {
	envString(EnvModelsProvider, &c.Provider)
	envString(EnvModelsBaseURL, &c.BaseURL)
	envString(EnvModelsVision, &c.Vision)
	envString(EnvModelsText, &c.Text)
	envString(EnvModelsToken, &c.Token)
	envFloat(EnvModelsTemperature, &c.Temperature)
}

func (c *ModelsConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if c.Vision == "" {
		return fmt.Errorf("vision model required")
	}
	if c.Text == "" {
		return fmt.Errorf("text model required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2: %g", c.Temperature)
	}
	return nil
}
