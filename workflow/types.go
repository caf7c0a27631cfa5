package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/internal/labs"
	"github.com/labsight/labsight/internal/prompts"
)

const (
	KeyAnalysisID = "analysis_id"
	KeyText       = "text"
	KeyLabReport  = "lab_report"
	KeyStages     = "stages"
)

// StageResult is the free-text output of one agent stage.
type StageResult struct {
	Stage    prompts.Stage `json:"stage"`
	Position int           `json:"position"`
	Title    string        `json:"title"`
	Output   string        `json:"output"`
}

// Result is the outcome of a completed analysis. It exists only for the
// lifetime of the request that produced it.
type Result struct {
	ID          uuid.UUID            `json:"id"`
	Filename    string               `json:"filename"`
	MediaType   extraction.MediaType `json:"media_type"`
	PageCount   int                  `json:"page_count"`
	Source      extraction.Source    `json:"source"`
	Text        string               `json:"text"`
	LabReport   labs.Report          `json:"lab_report"`
	Stages      []StageResult        `json:"stages"`
	CompletedAt time.Time            `json:"completed_at"`
}

// Stage returns the output of the named stage, if present.
func (r *Result) Stage(stage prompts.Stage) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s, true
		}
	}
	return StageResult{}, false
}
