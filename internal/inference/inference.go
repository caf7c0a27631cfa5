// Package inference connects labsight to the model server through go-agents.
// It exposes one Client per configured model: a vision model for image
// reports and a text model for the agent pipeline.
package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/labsight/labsight/internal/config"
	"github.com/labsight/labsight/pkg/lifecycle"
)

// Errors returned by model calls. Both are terminal for the current analysis.
var (
	ErrInference     = errors.New("inference request failed")
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// Client sends single blocking prompts to one model.
type Client interface {
	// Model returns the model identifier the client targets.
	Model() string
	// Chat sends a text-only prompt and returns the trimmed response content.
	Chat(ctx context.Context, prompt string) (string, error)
	// Vision sends a prompt with images encoded as data URIs.
	Vision(ctx context.Context, prompt string, images ...string) (string, error)
}

// System owns the model clients and the startup probe of the model server.
type System interface {
	Vision() Client
	Text() Client
	// Start registers the model availability probe with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the probe found every configured model.
	Ready() bool
}

type system struct {
	vision Client
	text   Client
	probe  *probe
	logger *slog.Logger
}

// New creates go-agents agents for the vision and text models.
// No request reaches the model server until the first call.
func New(cfg *config.ModelsConfig, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "inference")

	vision, err := newClient(cfg.VisionAgent())
	if err != nil {
		return nil, fmt.Errorf("vision agent: %w", err)
	}

	text, err := newClient(cfg.TextAgent())
	if err != nil {
		return nil, fmt.Errorf("text agent: %w", err)
	}

	return &system{
		vision: vision,
		text:   text,
		probe:  newProbe(cfg, logger),
		logger: logger,
	}, nil
}

func (s *system) Vision() Client { return s.vision }
func (s *system) Text() Client   { return s.text }
func (s *system) Ready() bool    { return s.probe.Ready() }

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info(
		"starting inference system",
		"vision_model", s.vision.Model(),
		"text_model", s.text.Model(),
	)

	lc.Track(s.probe)
	lc.OnStartup(func() {
		s.probe.Run(lc.Context())
	})

	return nil
}

type client struct {
	agent agent.Agent
	model string
}

func newClient(cfg gaconfig.AgentConfig) (*client, error) {
	a, err := agent.New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent %s: %w", cfg.Name, err)
	}
	return &client{agent: a, model: cfg.Model.Name}, nil
}

func (c *client) Model() string {
	return c.model
}

func (c *client) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.agent.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: chat %s: %w", ErrInference, c.model, err)
	}
	return content(c.model, resp.Content())
}

func (c *client) Vision(ctx context.Context, prompt string, images ...string) (string, error) {
	resp, err := c.agent.Vision(ctx, prompt, images)
	if err != nil {
		return "", fmt.Errorf("%w: vision %s: %w", ErrInference, c.model, err)
	}
	return content(c.model, resp.Content())
}

func content(model, raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyResponse, model)
	}
	return text, nil
}
