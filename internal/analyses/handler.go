package analyses

import (
	"log/slog"
	"net/http"

	"github.com/labsight/labsight/pkg/handlers"
	"github.com/labsight/labsight/pkg/routes"
)

// Handler provides HTTP endpoints for analysis operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "analyses"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analyses",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Analyze},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages},
		},
	}
}

// Analyze validates a multipart upload and returns the completed analysis.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	report, err := ReadUpload(w, r, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger.With(FailureAttrs(r, err)...), MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Analyze(r.Context(), report)
	if err != nil {
		handlers.RespondError(w, h.logger.With(FailureAttrs(r, err)...), MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Stages returns the ordered agent stages of the pipeline.
func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Stages())
}
