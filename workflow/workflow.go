package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/internal/prompts"
)

const nodeExtract = "extract"

// execution carries per-run identity and the first node failure, so callers
// receive the node's error chain regardless of how the graph wraps it.
type execution struct {
	id uuid.UUID

	mu  sync.Mutex
	err error
}

func (e *execution) fail(err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err == nil {
		e.err = err
	}
	return err
}

func (e *execution) failure() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Execute runs the analysis for a single document. It builds the state graph
// (extract → summarize → concerns → recommend → resources), executes it, and
// extracts the Result from the final state. Any node failure ends the run and
// no partial Result is returned.
func Execute(ctx context.Context, rt *Runtime, doc extraction.Document) (*Result, error) {
	run := &execution{id: uuid.New()}

	rt.Logger.InfoContext(
		ctx, "analysis started",
		"analysis_id", run.id,
		"filename", doc.Filename,
		"media_type", doc.MediaType,
	)

	result, err := run.execute(ctx, rt, doc)
	if err != nil {
		return nil, &AnalysisError{ID: run.id, Err: err}
	}

	rt.Logger.InfoContext(
		ctx, "analysis complete",
		"analysis_id", result.ID,
		"stages", len(result.Stages),
	)

	return result, nil
}

func (e *execution) execute(ctx context.Context, rt *Runtime, doc extraction.Document) (*Result, error) {
	graph, err := buildGraph(rt, doc, e)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyAnalysisID, e.id)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		if nodeErr := e.failure(); nodeErr != nil {
			return nil, nodeErr
		}
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState, doc)
}

func buildGraph(rt *Runtime, doc extraction.Document, run *execution) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("labsight-analysis")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode(nodeExtract, extractNode(rt, doc, run)); err != nil {
		return nil, err
	}

	prev := nodeExtract
	pipeline := prompts.Pipeline()

	for i, stage := range pipeline {
		name := string(stage)

		if err := graph.AddNode(name, stageNode(rt, stage, i+1, run)); err != nil {
			return nil, err
		}

		if err := graph.AddEdge(prev, name, nil); err != nil {
			return nil, err
		}

		prev = name
	}

	if err := graph.SetEntryPoint(nodeExtract); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint(prev); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractResult(s state.State, doc extraction.Document) (*Result, error) {
	idVal, ok := s.Get(KeyAnalysisID)
	if !ok {
		return nil, fmt.Errorf("missing %s in final state", KeyAnalysisID)
	}

	id, ok := idVal.(uuid.UUID)
	if !ok {
		return nil, fmt.Errorf("%s is not uuid.UUID", KeyAnalysisID)
	}

	text, err := extractText(s)
	if err != nil {
		return nil, err
	}

	report, err := extractLabReport(s)
	if err != nil {
		return nil, err
	}

	stages, err := extractStages(s)
	if err != nil {
		return nil, err
	}

	if len(stages) != len(prompts.Pipeline()) {
		return nil, fmt.Errorf("%w: %d of %d stages completed", ErrStageFailed, len(stages), len(prompts.Pipeline()))
	}

	return &Result{
		ID:          id,
		Filename:    doc.Filename,
		MediaType:   doc.MediaType,
		PageCount:   pageCount(doc, &text),
		Source:      text.Source,
		Text:        text.Text,
		LabReport:   report,
		Stages:      stages,
		CompletedAt: time.Now(),
	}, nil
}

// pageCount prefers the validated page count of the upload over the number of
// pages the extractor read.
func pageCount(doc extraction.Document, text *extraction.Text) int {
	if doc.PageCount > 0 {
		return doc.PageCount
	}
	return text.Pages
}
