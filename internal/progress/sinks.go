package progress

import (
	"fmt"
	"io"
	"sync"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/utils/logging"
)

// Lookup resolves a task id to its current snapshot.
type Lookup func(taskID string) (models.TaskSnapshot, bool)

// Multi fans events out to several notifiers.
type Multi []Notifier

func (m Multi) OnProgress(taskID string, percent float64, est Estimate) {
	for _, n := range m {
		n.OnProgress(taskID, percent, est)
	}
}

func (m Multi) OnStatusChanged(taskID string, status consts.TaskStatus) {
	for _, n := range m {
		n.OnStatusChanged(taskID, status)
	}
}

// Console writes one line per event.
type Console struct {
	w      io.Writer
	lookup Lookup
	mu     sync.Mutex
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer, lookup Lookup) *Console {
	return &Console{w: w, lookup: lookup}
}

func (c *Console) label(id string) string {
	if c.lookup != nil {
		if s, ok := c.lookup(id); ok {
			return s.Label()
		}
	}
	return id
}

func (c *Console) OnProgress(taskID string, percent float64, est Estimate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "%-60s %6.1f%%  %12s  ETA %s\n", c.label(taskID), percent, est.Speed, est.RemainingText)
}

func (c *Console) OnStatusChanged(taskID string, status consts.TaskStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("[%s] %s", status.DisplayName(), c.label(taskID))
	if status == consts.StatusFailed && c.lookup != nil {
		if s, ok := c.lookup(taskID); ok && s.Error != "" {
			line += ": " + s.Error
		}
	}
	fmt.Fprintln(c.w, line)
}

// Log reports status changes through the program logger.
type Log struct {
	lookup Lookup
}

// NewLog returns a Log notifier.
func NewLog(lookup Lookup) *Log {
	return &Log{lookup: lookup}
}

func (l *Log) OnProgress(taskID string, percent float64, est Estimate) {
	logging.D(3, "Task %s: %.1f%% (%s, ETA %s)", taskID, percent, est.Speed, est.RemainingText)
}

func (l *Log) OnStatusChanged(taskID string, status consts.TaskStatus) {
	url := taskID
	if l.lookup != nil {
		if s, ok := l.lookup(taskID); ok {
			url = s.URL
		}
	}
	logging.D(1, "Status update for %q: %s", url, status.DisplayName())
}
