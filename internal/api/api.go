// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/labsight/labsight/internal/config"
	"github.com/labsight/labsight/pkg/middleware"
	"github.com/labsight/labsight/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, runtime *Runtime, domain *Domain) *module.Module {
	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m
}
