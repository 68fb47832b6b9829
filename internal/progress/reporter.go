package progress

import (
	"sync"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/times"
)

// Notifier receives progress events.
type Notifier interface {
	OnProgress(taskID string, percent float64, est Estimate)
	OnStatusChanged(taskID string, status consts.TaskStatus)
}

type seen struct {
	status  consts.TaskStatus
	percent float64
	acked   bool
}

// Reporter compares snapshots with what it last saw and emits the differences.
// A terminal status is emitted once, after which the task is ignored.
type Reporter struct {
	sink         Notifier
	assumedTotal int64
	clock        times.Clock

	mu   sync.Mutex
	last map[string]*seen
}

// NewReporter returns a Reporter. assumedTotal is the size in bytes used for
// speed estimates.
func NewReporter(sink Notifier, assumedTotal int64, clock times.Clock) *Reporter {
	if assumedTotal <= 0 {
		assumedTotal = consts.DefaultAssumedSizeMB << 20
	}
	if clock == nil {
		clock = times.System{}
	}
	return &Reporter{
		sink:         sink,
		assumedTotal: assumedTotal,
		clock:        clock,
		last:         make(map[string]*seen),
	}
}

// Report processes one poll's snapshots.
func (r *Reporter) Report(snaps []models.TaskSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	for _, s := range snaps {
		prev, known := r.last[s.ID]
		if known && prev.acked {
			continue
		}
		if !known {
			prev = &seen{percent: -1}
			r.last[s.ID] = prev
		}

		statusChanged := prev.status != s.Status
		percentChanged := prev.percent != s.Percent
		prev.status, prev.percent = s.Status, s.Percent

		if statusChanged && !s.Status.IsTerminal() {
			r.sink.OnStatusChanged(s.ID, s.Status)
		}
		if percentChanged && (s.Status == consts.StatusRunning || s.Status == consts.StatusCompleted) {
			r.sink.OnProgress(s.ID, s.Percent, Compute(s.Percent, elapsed(s, now), r.assumedTotal))
		}
		if s.Status.IsTerminal() {
			prev.acked = true
			r.sink.OnStatusChanged(s.ID, s.Status)
		}
	}
}

func elapsed(s models.TaskSnapshot, now time.Time) time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	end := now
	if !s.FinishedAt.IsZero() {
		end = s.FinishedAt
	}
	return end.Sub(s.StartedAt)
}
