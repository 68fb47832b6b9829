package progress

import (
	"context"
	"sync"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/utils/logging"
)

// Recorder persists finished tasks.
type Recorder interface {
	Record(ctx context.Context, rec models.HistoryRecord) error
}

const (
	historyBuffer     = 64
	historyRetries    = 3
	historyBackoff    = 100 * time.Millisecond
	historyWriteLimit = 5 * time.Second
)

// History writes terminal tasks to a Recorder from a background goroutine so
// the poll loop never waits on the database.
type History struct {
	store  Recorder
	lookup Lookup

	mu      sync.RWMutex
	closed  bool
	updates chan models.HistoryRecord
	wg      sync.WaitGroup
}

// NewHistory returns a History notifier. Call Start before use and Stop to flush.
func NewHistory(store Recorder, lookup Lookup) *History {
	return &History{
		store:   store,
		lookup:  lookup,
		updates: make(chan models.HistoryRecord, historyBuffer),
	}
}

// Start begins processing records.
func (h *History) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.process(ctx)
}

// Stop flushes pending records and waits for the writer to exit.
func (h *History) Stop() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.updates)
	}
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *History) OnProgress(string, float64, Estimate) {}

func (h *History) OnStatusChanged(taskID string, status consts.TaskStatus) {
	if !status.IsTerminal() || h.lookup == nil {
		return
	}
	s, ok := h.lookup(taskID)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.updates <- models.HistoryFromSnapshot(s):
	default:
		logging.W("History buffer full, dropping record for %q", s.URL)
	}
}

func (h *History) process(ctx context.Context) {
	defer h.wg.Done()
	for rec := range h.updates {
		h.flush(ctx, rec)
	}
}

func (h *History) flush(ctx context.Context, rec models.HistoryRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteLimit)
	defer cancel()

	// Retry logic for transient failures
	for attempt := range historyRetries {
		err := h.store.Record(ctx, rec)
		if err == nil {
			logging.D(2, "Recorded history for %q", rec.URL)
			return
		}
		if attempt == historyRetries-1 {
			logging.E("Failed to record history for %q after %d attempts: %v", rec.URL, historyRetries, err)
			return
		}
		logging.W("Retrying history write after failure (attempt %d/%d): %v", attempt+1, historyRetries, err)
		time.Sleep(historyBackoff * time.Duration(attempt+1))
	}
}
