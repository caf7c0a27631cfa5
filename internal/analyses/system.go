// Package analyses accepts blood test report uploads and runs them through
// the analysis workflow. Nothing is persisted: each result is returned to the
// caller and discarded.
package analyses

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/labsight/labsight/internal/prompts"
	"github.com/labsight/labsight/workflow"
)

// StageInfo describes one agent stage of the pipeline.
type StageInfo struct {
	Stage    prompts.Stage `json:"stage"`
	Position int           `json:"position"`
	Title    string        `json:"title"`
	Role     string        `json:"role"`
}

// System defines the public contract for analysis operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Analyze runs the full workflow for one validated report.
	// It blocks while the concurrency limit is reached, until ctx is done.
	Analyze(ctx context.Context, report *Report) (*workflow.Result, error)

	Stages() []StageInfo
}

type system struct {
	rt     *workflow.Runtime
	slots  *semaphore.Weighted
	logger *slog.Logger
}

// New creates an analyses System that allows at most maxConcurrent analyses at once.
func New(rt *workflow.Runtime, maxConcurrent int, logger *slog.Logger) System {
	return &system{
		rt:     rt,
		slots:  semaphore.NewWeighted(int64(max(maxConcurrent, 1))),
		logger: logger.With("system", "analyses"),
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

func (s *system) Analyze(ctx context.Context, report *Report) (*workflow.Result, error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("wait for analysis slot: %w", err)
	}
	defer s.slots.Release(1)

	return workflow.Execute(ctx, s.rt, report.Document())
}

func (s *system) Stages() []StageInfo {
	pipeline := prompts.Pipeline()
	out := make([]StageInfo, len(pipeline))
	for i, stage := range pipeline {
		out[i] = StageInfo{
			Stage:    stage,
			Position: i + 1,
			Title:    stage.Title(),
			Role:     stage.Role(),
		}
	}
	return out
}
