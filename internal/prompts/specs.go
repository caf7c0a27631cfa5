package prompts

const transcribeSpec = `Respond with the transcribed text only.

Behavioral constraints:
- No markdown, commentary, or explanations
- If the image contains no readable report text, respond with an empty message`

const summarizeSpec = `Respond in Markdown as a concise bullet list of at most 6 bullets.

Field constraints:
- Each bullet names a test, its exact value with unit, and whether it is high, low, or normal
  relative to its reference range
- Order bullets by clinical relevance

Behavioral constraints:
- Do not fabricate metrics that are not present in the report
- Do not give a diagnosis`

const concernsSpec = `Respond in Markdown as a bullet list of concerns.

Field constraints:
- Each bullet names the concern, the values that triggered it, and explains in at most
  2 sentences why it matters

Behavioral constraints:
- Base every concern on values from the report or the key findings
- When no values are abnormal, respond with a single bullet stating that explicitly`

const recommendSpec = `Respond in Markdown with exactly two sections:

### Recommended Follow-up Tests
3-4 bullets, each naming a test and the rationale referencing specific values or concerns.

### Lifestyle Advice
Bullets covering diet, activity, and monitoring aligned with the flagged values.

Behavioral constraints:
- Do not prescribe medication
- Advise consulting a clinician for any abnormal value`

const resourcesSpec = `Respond in Markdown as a bullet list of 2-3 resources.

Field constraints:
- Each bullet contains the resource name, its URL, and a one-sentence justification that
  references the finding it helps explain

Behavioral constraints:
- Only cite reputable organizations (e.g., CDC, WHO, specialty societies)
- Never invent URLs; use the knowledge base candidates when they apply`

var specs = map[Stage]string{
	StageTranscribe: transcribeSpec,
	StageSummarize:  summarizeSpec,
	StageConcerns:   concernsSpec,
	StageRecommend:  recommendSpec,
	StageResources:  resourcesSpec,
}

// Spec returns the output format and behavioral constraints for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
