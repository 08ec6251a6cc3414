package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - reports may be nil, the report routes then answer 503.
func NewRouter(logger *slog.Logger, reports reportStore) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)

	if reports == nil {
		router.Get("/reports", reportsUnavailable)
		router.Get("/reports/{id}", reportsUnavailable)

		return router
	}

	handlers := &reportHandlers{
		logger:  logger.With("component", "rest"),
		reports: reports,
	}

	router.Get("/reports", handlers.listReports)
	router.Get("/reports/{id}", handlers.getReport)

	return router
}

// Start - serves handler until ctx is cancelled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
