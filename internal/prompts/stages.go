// Package prompts holds the fixed instruction and output-format text for each
// analysis stage, and the stage catalog that orders the agent pipeline.
package prompts

import (
	"encoding/json"
	"slices"
)

// Stage identifies a prompt-defined step of an analysis.
type Stage string

const (
	// StageTranscribe turns an uploaded report image into plain text via the vision model.
	StageTranscribe Stage = "transcribe"

	StageSummarize Stage = "summarize"
	StageConcerns  Stage = "concerns"
	StageRecommend Stage = "recommend"
	StageResources Stage = "resources"
)

var pipeline = []Stage{
	StageSummarize,
	StageConcerns,
	StageRecommend,
	StageResources,
}

var stages = append([]Stage{StageTranscribe}, pipeline...)

var titles = map[Stage]string{
	StageTranscribe: "Transcription",
	StageSummarize:  "Key Findings",
	StageConcerns:   "Health Concerns",
	StageRecommend:  "Recommendations",
	StageResources:  "Trusted Resources",
}

var roles = map[Stage]string{
	StageTranscribe: "Report Transcriber",
	StageSummarize:  "Blood Test Analyst",
	StageConcerns:   "Clinical Concern Reviewer",
	StageRecommend:  "Holistic Health Advisor",
	StageResources:  "Medical Research Specialist",
}

// Pipeline returns the four agent stages in their fixed execution order.
func Pipeline() []Stage {
	return slices.Clone(pipeline)
}

// Title returns the display title of the stage's output section.
func (s Stage) Title() string {
	return titles[s]
}

// Role returns the name of the agent persona that runs the stage.
func (s Stage) Role() string {
	return roles[s]
}

// UnmarshalJSON validates that the decoded string is a known stage value.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage validates a string as a known stage.
// Returns ErrInvalidStage if the value is not recognized.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}
