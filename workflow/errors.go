// Package workflow implements the lab report analysis for labsight.
// It runs a linear state graph (extract → summarize → concerns → recommend →
// resources) where each agent stage is one blocking call to the text model.
package workflow

import (
	"errors"

	"github.com/google/uuid"
)

// Sentinel errors for workflow operations.
var (
	ErrExtractFailed = errors.New("text extraction failed")
	ErrStageFailed   = errors.New("agent stage failed")
)

// AnalysisError ties a failure to the analysis run that produced it.
// Its message is the underlying error's message.
type AnalysisError struct {
	ID  uuid.UUID
	Err error
}

func (e *AnalysisError) Error() string { return e.Err.Error() }

func (e *AnalysisError) Unwrap() error { return e.Err }

// AnalysisID returns the run ID carried by err, if any.
func AnalysisID(err error) (uuid.UUID, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.ID, true
	}
	return uuid.Nil, false
}
