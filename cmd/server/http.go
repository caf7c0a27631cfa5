package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labsight/labsight/internal/config"
	"github.com/labsight/labsight/pkg/lifecycle"
)

// responseMargin is reserved at the end of the write timeout for rendering
// the error page of an analysis that ran out of time.
const responseMargin = 5 * time.Second

type httpServer struct {
	http            *http.Server
	logger          *slog.Logger
	budget          time.Duration
	shutdownTimeout time.Duration
	maxConcurrent   int
}

func newHTTPServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *httpServer {
	logger = logger.With("system", "http")

	writeTimeout := cfg.Server.WriteTimeoutDuration()
	shutdownTimeout := cfg.Server.ShutdownTimeoutDuration()
	budget := requestBudget(writeTimeout)

	return &httpServer{
		http: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      withDeadline(handler, budget),
			ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
			WriteTimeout: writeTimeout,
		},
		logger:          logger,
		budget:          budget,
		shutdownTimeout: shutdownTimeout,
		maxConcurrent:   cfg.Pipeline.MaxConcurrent,
	}
}

// requestBudget is how long a request may run before its context expires.
// Zero means no write timeout and no deadline.
func requestBudget(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return 0
	}
	if writeTimeout <= 2*responseMargin {
		return writeTimeout / 2
	}
	return writeTimeout - responseMargin
}

// withDeadline bounds each request context by budget so a slow analysis
// fails with a mapped error response before the connection write deadline.
func withDeadline(next http.Handler, budget time.Duration) http.Handler {
	if budget <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), budget)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	go func() {
		s.logger.Info(
			"server listening",
			"addr", s.http.Addr,
			"analysis_budget", s.budget,
			"max_concurrent", s.maxConcurrent,
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		// Analyses still running when the timeout ends are cut off.
		s.logger.Info("draining in-flight analyses", "timeout", s.shutdownTimeout)

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
			return
		}
		s.logger.Info("server shutdown complete")
	})

	return nil
}
