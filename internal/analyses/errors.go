package analyses

import (
	"context"
	"errors"
	"net/http"

	"github.com/labsight/labsight/internal/extraction"
	"github.com/labsight/labsight/internal/inference"
	"github.com/labsight/labsight/pkg/middleware"
	"github.com/labsight/labsight/workflow"
)

// Upload errors. All are returned before extraction is attempted.
var (
	ErrUnsupportedType = errors.New("unsupported file type: upload a PDF, PNG, or JPEG report")
	ErrEmptyFile       = errors.New("uploaded file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum upload size")
	ErrInvalidFile     = errors.New("invalid file")
)

// MapHTTPStatus maps analysis errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrUnsupportedType), errors.Is(err, extraction.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidFile), errors.Is(err, extraction.ErrUnreadable):
		return http.StatusBadRequest
	case errors.Is(err, extraction.ErrEmptyText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inference.ErrInference),
		errors.Is(err, inference.ErrEmptyResponse),
		errors.Is(err, workflow.ErrStageFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FailureAttrs returns log attributes that correlate a failed request with its
// request ID and, when the workflow ran, the analysis ID.
func FailureAttrs(r *http.Request, err error) []any {
	attrs := []any{"request_id", middleware.RequestID(r.Context())}
	if id, ok := workflow.AnalysisID(err); ok {
		attrs = append(attrs, "analysis_id", id)
	}
	return attrs
}
