package workflow

import (
	"fmt"
	"strings"

	"github.com/labsight/labsight/internal/prompts"
)

// ComposePrompt builds the prompt for an agent stage from its instructions,
// its output specification, the original report text, and the outputs of every
// prior stage in pipeline order. Context, when non-empty, is appended under its
// own heading.
func ComposePrompt(stage prompts.Stage, text string, prior []StageResult, context string) (string, error) {
	instructions, err := prompts.Instructions(stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := prompts.Spec(stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	sb.WriteString("\n\n## Blood Test Report\n\n")
	sb.WriteString(text)

	for _, r := range prior {
		fmt.Fprintf(&sb, "\n\n## %s (%s)\n\n", r.Title, r.Stage.Role())
		sb.WriteString(r.Output)
	}

	if context != "" {
		sb.WriteString("\n\n## Knowledge Base Candidates\n\n")
		sb.WriteString(context)
	}

	return sb.String(), nil
}
