// Package app serves the browser UI: an upload form and the rendered
// analysis panels. It calls the analyses system directly, not the JSON API.
package app

import (
	"embed"
	"log/slog"
	"net/http"

	"github.com/labsight/labsight/internal/analyses"
	"github.com/labsight/labsight/pkg/formatting"
	"github.com/labsight/labsight/pkg/module"
	"github.com/labsight/labsight/pkg/web"
)

//go:embed templates static
var appFS embed.FS

const layout = "app"

var (
	uploadView   = web.ViewDef{Route: "/", Template: "upload.html", Title: "Analyze Blood Test Report"}
	resultsView  = web.ViewDef{Route: "/analyze", Template: "results.html", Title: "Analysis Results"}
	notFoundView = web.ViewDef{Template: "not-found.html", Title: "Not Found"}
)

type handler struct {
	views         *web.TemplateSet
	sys           analyses.System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewModule creates the UI module mounted at basePath.
func NewModule(basePath string, sys analyses.System, maxUploadSize int64, logger *slog.Logger) (*module.Module, error) {
	views, err := web.NewTemplateSet(
		appFS,
		"templates/layouts/*.html",
		"templates/views",
		basePath,
		[]web.ViewDef{uploadView, resultsView, notFoundView},
		funcs,
	)
	if err != nil {
		return nil, err
	}

	h := &handler{
		views:         views,
		sys:           sys,
		logger:        logger.With("handler", "app"),
		maxUploadSize: maxUploadSize,
	}

	return module.New(basePath, h.router()), nil
}

// router serves the upload form, the analyze action, and static assets.
// Every other path or method renders the not-found page.
func (h *handler) router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.views.PageHandler(layout, uploadView, h.uploadData("")))
	mux.HandleFunc("POST "+resultsView.Route, h.analyze)
	mux.HandleFunc("GET /static/", web.DistServer(appFS, "static", "/static/"))
	mux.HandleFunc("/", h.views.ErrorHandler(layout, notFoundView, http.StatusNotFound))

	return mux
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	report, err := analyses.ReadUpload(w, r, h.maxUploadSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	result, err := h.sys.Analyze(r.Context(), report)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	results, err := newResults(result)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.views.Respond(w, http.StatusOK, layout, resultsView, results)
}

// fail re-renders the upload page with the error shown verbatim.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := analyses.MapHTTPStatus(err)
	logger := h.logger.With(analyses.FailureAttrs(r, err)...)
	if status >= http.StatusInternalServerError {
		logger.Error("analysis failed", "status", status, "error", err)
	} else {
		logger.Warn("upload rejected", "status", status, "error", err)
	}

	h.views.Respond(w, status, layout, uploadView, h.uploadData(err.Error()))
}

func (h *handler) uploadData(errMsg string) Upload {
	return Upload{
		Error:   errMsg,
		MaxSize: formatting.FormatBytes(h.maxUploadSize, 0),
		Stages:  panels(nil),
	}
}
