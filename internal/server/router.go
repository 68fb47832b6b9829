// Package server exposes the download queue over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"tubeplus/internal/models"
	"tubeplus/internal/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Controller is the queue surface the API drives.
type Controller interface {
	Enqueue(cfgs []models.TaskConfig) []*models.Task
	Snapshot() []models.TaskSnapshot
	Task(id string) (*models.Task, bool)
	RequestCancel(id string) error
	CancelAll()
}

// HistoryLister reads finished downloads.
type HistoryLister interface {
	Latest(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

// Defaults fill in fields an enqueue request leaves out.
type Defaults struct {
	Directory string
	Quality   models.Quality
	Subtitles bool
}

type api struct {
	ctrl     Controller
	history  HistoryLister
	defaults Defaults
}

// NewRouter returns a http Handler. history may be nil.
func NewRouter(ctrl Controller, history HistoryLister, defaults Defaults) http.Handler {
	a := &api{ctrl: ctrl, history: history, defaults: defaults}

	// Initialize router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// --- API Routes ---
	r.Route("/api/v1", func(r chi.Router) {
		// Downloads API
		r.Route("/downloads", func(r chi.Router) {
			r.Get("/", a.handleListDownloads)
			r.Post("/", a.handleEnqueue)
			r.Post("/cancel", a.handleCancelAll)
			r.Get("/{id}", a.handleGetDownload)
			r.Delete("/{id}", a.handleCancelDownload)
		})

		r.Get("/history", a.handleHistory)
	})

	return r
}

// Start serves handler on addr until ctx ends.
func Start(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.S("tubeplus web server running on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}
