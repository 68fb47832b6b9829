package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/errconsts"
	"tubeplus/internal/models"
	"tubeplus/internal/utils/logging"
	"tubeplus/internal/validation"

	"github.com/go-chi/chi/v5"
)

// enqueueRequest is the POST /downloads body.
type enqueueRequest struct {
	URLs      []string `json:"urls"`
	Quality   string   `json:"quality"`
	Subtitles *bool    `json:"subtitles"`
	Directory string   `json:"directory"`
}

// handleListDownloads lists every task in queue order.
func (a *api) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.ctrl.Snapshot())
}

// handleGetDownload returns one task.
func (a *api) handleGetDownload(w http.ResponseWriter, r *http.Request) {
	t, ok := a.ctrl.Task(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "download not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t.Snapshot())
}

// handleEnqueue adds downloads to the end of the queue.
func (a *api) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateURLs(req.URLs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	quality := a.defaults.Quality
	if req.Quality != "" {
		q, err := validation.ValidateQuality(req.Quality)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		quality = q
	}
	subtitles := a.defaults.Subtitles
	if req.Subtitles != nil {
		subtitles = *req.Subtitles
	}
	dir := a.defaults.Directory
	if req.Directory != "" {
		dir = req.Directory
	}

	cfgs := make([]models.TaskConfig, 0, len(req.URLs))
	for _, u := range req.URLs {
		cfg := models.TaskConfig{URL: u, Directory: dir, Quality: quality, Subtitles: subtitles}
		if err := validation.ValidateTaskConfig(&cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cfgs = append(cfgs, cfg)
	}

	tasks := a.ctrl.Enqueue(cfgs)
	out := make([]models.TaskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Snapshot())
	}
	writeJSON(w, http.StatusCreated, out)
}

// handleCancelDownload cancels one task.
func (a *api) handleCancelDownload(w http.ResponseWriter, r *http.Request) {
	if err := a.ctrl.RequestCancel(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, errconsts.ErrTaskNotFound) {
			http.Error(w, "download not found", http.StatusNotFound)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCancelAll cancels the whole queue.
func (a *api) handleCancelAll(w http.ResponseWriter, r *http.Request) {
	a.ctrl.CancelAll()
	w.WriteHeader(http.StatusNoContent)
}

// handleHistory lists recent finished downloads.
func (a *api) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		http.Error(w, "history is disabled", http.StatusNotFound)
		return
	}

	limit := consts.DefaultHistoryLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := a.history.Latest(r.Context(), limit)
	if err != nil {
		logging.E("History query failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []models.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.E("Failed to encode JSON response: %v", err)
	}
}
