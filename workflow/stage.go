package workflow

import (
	"context"
	"fmt"
	"slices"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/labsight/labsight/internal/labs"
	"github.com/labsight/labsight/internal/prompts"
	"github.com/labsight/labsight/internal/resources"
)

// stageNode returns a state node that runs one agent stage. The prompt carries
// the report text and every prior stage output; the response is appended to
// the stage results in state.
func stageNode(rt *Runtime, stage prompts.Stage, position int, run *execution) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		fail := func(err error) error {
			return run.fail(fmt.Errorf("%w: %s: %w", ErrStageFailed, stage, err))
		}

		text, err := extractText(s)
		if err != nil {
			return s, fail(err)
		}

		prior, err := extractStages(s)
		if err != nil {
			return s, fail(err)
		}

		var extra string
		if stage == prompts.StageResources {
			report, err := extractLabReport(s)
			if err != nil {
				return s, fail(err)
			}
			extra = resources.Format(resources.Lookup(lookupTexts(text.Text, report, prior)...))
		}

		prompt, err := ComposePrompt(stage, text.Text, prior, extra)
		if err != nil {
			return s, fail(err)
		}

		output, err := rt.Text.Chat(ctx, prompt)
		if err != nil {
			return s, fail(err)
		}

		rt.Logger.InfoContext(
			ctx, "stage node complete",
			"analysis_id", run.id,
			"stage", stage,
			"position", position,
			"chars", len(output),
		)

		results := append(slices.Clone(prior), StageResult{
			Stage:    stage,
			Position: position,
			Title:    stage.Title(),
			Output:   output,
		})

		return s.Set(KeyStages, results), nil
	})
}

// lookupTexts selects what the knowledge base is matched against: abnormal
// test names and the agent outputs. The raw report is used only when no
// test was flagged and no stage has run.
func lookupTexts(text string, report labs.Report, prior []StageResult) []string {
	var texts []string
	for _, t := range report.Abnormal() {
		texts = append(texts, t.Name)
	}
	for _, r := range prior {
		texts = append(texts, r.Output)
	}
	if len(texts) == 0 {
		texts = append(texts, text)
	}
	return texts
}

func extractStages(s state.State) ([]StageResult, error) {
	val, ok := s.Get(KeyStages)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyStages)
	}

	results, ok := val.([]StageResult)
	if !ok {
		return nil, fmt.Errorf("%s is not []StageResult", KeyStages)
	}

	return results, nil
}
