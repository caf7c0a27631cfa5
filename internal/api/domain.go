package api

import (
	"github.com/labsight/labsight/internal/analyses"
	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Analyses analyses.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	wf := &workflow.Runtime{
		Extractor: extraction.New(runtime.Inference.Vision(), runtime.Logger),
		Text:      runtime.Inference.Text(),
		Logger:    runtime.Logger.With("system", "workflow"),
	}

	return &Domain{
		Analyses: analyses.New(wf, runtime.MaxConcurrent, runtime.Logger),
	}
}
