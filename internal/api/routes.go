package api

import (
	"net/http"

	"github.com/labsight/labsight/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Analyses.Handler(runtime.MaxUploadSize).Routes(),
	)
}
