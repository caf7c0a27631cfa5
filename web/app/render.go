package app

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/labsight/labsight/internal/labs"
	"github.com/labsight/labsight/internal/prompts"
	"github.com/labsight/labsight/workflow"
)

const placeholder = "No output."

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	policy   = bluemonday.UGCPolicy()
)

// Panel is one rendered agent output section.
type Panel struct {
	Stage prompts.Stage
	Title string
	Body  template.HTML
	Empty bool
}

// Results is the view model of the results page.
type Results struct {
	Result   *workflow.Result
	Panels   []Panel
	Abnormal int
	Download template.URL
}

// Upload is the view model of the upload page.
type Upload struct {
	Error   string
	MaxSize string
	Stages  []Panel
}

// renderMarkdown converts model output to sanitized HTML.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes()))
}

// panels lays out one panel per pipeline stage, in pipeline order. Stages
// without output render the placeholder.
func panels(result *workflow.Result) []Panel {
	pipeline := prompts.Pipeline()
	out := make([]Panel, len(pipeline))

	for i, stage := range pipeline {
		p := Panel{Stage: stage, Title: stage.Title()}

		var output string
		if result != nil {
			if sr, ok := result.Stage(stage); ok {
				output = strings.TrimSpace(sr.Output)
			}
		}

		if output == "" {
			p.Empty = true
			p.Body = template.HTML(placeholder)
		} else {
			p.Body = renderMarkdown(output)
		}

		out[i] = p
	}

	return out
}

func newResults(result *workflow.Result) (*Results, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}

	return &Results{
		Result:   result,
		Panels:   panels(result),
		Abnormal: len(result.LabReport.Abnormal()),
		Download: template.URL("data:application/json;base64," + base64.StdEncoding.EncodeToString(data)),
	}, nil
}

func flagClass(f labs.Flag) string {
	if f == labs.FlagNone {
		return "flag-none"
	}
	return "flag-" + string(f)
}

var funcs = template.FuncMap{
	"flagClass": flagClass,
}
