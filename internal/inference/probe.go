package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labsight/labsight/internal/config"
)

const probeTimeout = 10 * time.Second

// probe checks that the model server is reachable and serves both configured
// models. Only the ollama provider exposes a model listing; other providers
// are considered ready without a check.
type probe struct {
	provider string
	baseURL  string
	models   []string
	client   *http.Client
	logger   *slog.Logger
	ready    atomic.Bool
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

func newProbe(cfg *config.ModelsConfig, logger *slog.Logger) *probe {
	return &probe{
		provider: cfg.Provider,
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		models:   []string{cfg.Vision, cfg.Text},
		client:   &http.Client{Timeout: probeTimeout},
		logger:   logger,
	}
}

func (p *probe) Ready() bool {
	return p.ready.Load()
}

// Run performs the check once. A failed check is logged and leaves the probe
// not ready; it never stops the service from serving.
func (p *probe) Run(ctx context.Context) {
	if p.provider != "ollama" {
		p.ready.Store(true)
		return
	}

	missing, err := p.missing(ctx)
	if err != nil {
		p.logger.Error(
			"unable to communicate with the model server",
			"base_url", p.baseURL,
			"models", p.models,
			"error", err,
		)
		return
	}

	if len(missing) > 0 {
		p.logger.Error("configured models are not available", "missing", missing)
		return
	}

	p.ready.Store(true)
	p.logger.Info("model server ready", "base_url", p.baseURL, "models", p.models)
}

func (p *probe) missing(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: unexpected status %s", resp.Status)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	available := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		available = append(available, m.Name)
	}

	var missing []string
	for _, m := range p.models {
		if !slices.Contains(available, m) {
			missing = append(missing, m)
		}
	}
	return missing, nil
}
