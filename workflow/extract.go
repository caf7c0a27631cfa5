package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/internal/labs"
)

// extractNode returns a state node that converts the uploaded document to text
// and parses the lab tests out of it. No agent stage runs when it fails.
func extractNode(rt *Runtime, doc extraction.Document, run *execution) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		text, err := rt.Extractor.Extract(ctx, doc)
		if err != nil {
			return s, run.fail(fmt.Errorf("%w: %w", ErrExtractFailed, err))
		}

		report := labs.Parse(text.Text)

		rt.Logger.InfoContext(
			ctx, "extract node complete",
			"analysis_id", run.id,
			"source", text.Source,
			"pages", text.Pages,
			"tests", len(report.Tests),
			"abnormal", len(report.Abnormal()),
		)

		s = s.Set(KeyText, *text)
		s = s.Set(KeyLabReport, report)
		s = s.Set(KeyStages, []StageResult{})
		return s, nil
	})
}

func extractText(s state.State) (extraction.Text, error) {
	val, ok := s.Get(KeyText)
	if !ok {
		return extraction.Text{}, fmt.Errorf("missing %s in state", KeyText)
	}

	text, ok := val.(extraction.Text)
	if !ok {
		return extraction.Text{}, fmt.Errorf("%s is not extraction.Text", KeyText)
	}

	return text, nil
}

func extractLabReport(s state.State) (labs.Report, error) {
	val, ok := s.Get(KeyLabReport)
	if !ok {
		return labs.Report{}, fmt.Errorf("missing %s in state", KeyLabReport)
	}

	report, ok := val.(labs.Report)
	if !ok {
		return labs.Report{}, fmt.Errorf("%s is not labs.Report", KeyLabReport)
	}

	return report, nil
}
