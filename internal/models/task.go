// Package models holds the download task and related records.
package models

import (
	"sync"
	"sync/atomic"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/process"

	"github.com/google/uuid"
)

// TaskConfig is what the user asked to download.
type TaskConfig struct {
	URL       string
	Title     string
	Directory string
	Quality   Quality
	Subtitles bool
}

// Task is one queued download.
//
// Config and ID never change. Everything else is guarded by mu, except the
// cancellation flag which is atomic.
type Task struct {
	ID     string
	Config TaskConfig

	mu         sync.RWMutex
	status     consts.TaskStatus
	percent    float64
	createdAt  time.Time
	startedAt  time.Time
	finishedAt time.Time
	err        error
	handle     process.Process

	cancelRequested atomic.Bool
	cancelCh        chan struct{}
}

// NewTask creates a Queued task with a fresh "task-<uuid>" id.
func NewTask(cfg TaskConfig, now time.Time) *Task {
	return &Task{
		ID:        "task-" + uuid.NewString(),
		Config:    cfg,
		status:    consts.StatusQueued,
		createdAt: now,
		cancelCh:  make(chan struct{}),
	}
}

// Status returns the current status.
func (t *Task) Status() consts.TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Percent returns the latest progress value.
func (t *Task) Percent() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.percent
}

// StartedAt returns when the task began running, or the zero time.
func (t *Task) StartedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.startedAt
}

// Err returns the terminal error, if any.
func (t *Task) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Begin moves a Queued task to Running. It reports false for any other state.
func (t *Task) Begin(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != consts.StatusQueued {
		return false
	}
	t.status = consts.StatusRunning
	t.startedAt = now
	return true
}

// SetPercent records progress while Running.
func (t *Task) SetPercent(p float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == consts.StatusRunning {
		t.percent = p
	}
}

// AttachProcess records the running child. It reports false when cancellation
// was already requested, in which case the caller must kill p itself.
func (t *Task) AttachProcess(p process.Process) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != consts.StatusRunning || t.cancelRequested.Load() {
		return false
	}
	t.handle = p
	return true
}

// DetachProcess clears the recorded child.
func (t *Task) DetachProcess() {
	t.mu.Lock()
	t.handle = nil
	t.mu.Unlock()
}

// HasProcess reports whether a child is recorded.
func (t *Task) HasProcess() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.handle != nil
}

// Finish moves the task to a terminal status. Terminal states absorb: it
// reports false if the task had already finished.
func (t *Task) Finish(status consts.TaskStatus, err error, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.IsTerminal() || !status.IsTerminal() {
		return false
	}
	t.status = status
	t.err = err
	t.finishedAt = now
	t.handle = nil
	if status == consts.StatusCompleted {
		t.percent = 100
	}
	return true
}

// RequestCancel flags the task and force-kills its child if one is recorded.
// It reports false if the task had already finished.
func (t *Task) RequestCancel() bool {
	t.mu.Lock()
	if t.status.IsTerminal() {
		t.mu.Unlock()
		return false
	}
	if t.cancelRequested.CompareAndSwap(false, true) {
		close(t.cancelCh)
	}
	h := t.handle
	t.mu.Unlock()

	if h != nil {
		_ = h.Kill()
	}
	return true
}

// CancelRequested reports whether cancellation was asked for.
func (t *Task) CancelRequested() bool {
	return t.cancelRequested.Load()
}

// Cancelled is closed when cancellation is requested.
func (t *Task) Cancelled() <-chan struct{} {
	return t.cancelCh
}

// Snapshot copies the task's state.
func (t *Task) Snapshot() TaskSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := TaskSnapshot{
		ID:         t.ID,
		URL:        t.Config.URL,
		Title:      t.Config.Title,
		Directory:  t.Config.Directory,
		Quality:    t.Config.Quality.String(),
		Subtitles:  t.Config.Subtitles,
		Status:     t.status,
		Percent:    t.percent,
		CreatedAt:  t.createdAt,
		StartedAt:  t.startedAt,
		FinishedAt: t.finishedAt,
	}
	if t.err != nil {
		s.Error = t.err.Error()
	}
	return s
}

// TaskSnapshot is a point-in-time copy of a Task.
type TaskSnapshot struct {
	ID         string            `json:"id"`
	URL        string            `json:"url"`
	Title      string            `json:"title,omitempty"`
	Directory  string            `json:"directory"`
	Quality    string            `json:"quality"`
	Subtitles  bool              `json:"subtitles"`
	Status     consts.TaskStatus `json:"status"`
	Percent    float64           `json:"percent"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Error      string            `json:"error,omitempty"`
}

// Label returns the title when known, else the URL.
func (s TaskSnapshot) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}
