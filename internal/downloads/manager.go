package downloads

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/errconsts"
	"tubeplus/internal/models"
	"tubeplus/internal/times"
	"tubeplus/internal/utils/logging"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Lanes is how many tasks may run at once. Start order is always enqueue order.
	Lanes int
	// PollInterval is the Run ticker period.
	PollInterval time.Duration
	Clock        times.Clock
}

// PollResult is what one Poll observed.
type PollResult struct {
	Snapshots []models.TaskSnapshot
	// Started holds the ids launched by this poll.
	Started []string
	// Finalized holds the ids first seen terminal by this poll.
	Finalized []string
	Done      bool
}

// Manager owns the download queue.
type Manager struct {
	runner   *Runner
	lanes    int
	interval time.Duration
	clock    times.Clock

	mu        sync.Mutex
	tasks     []*models.Task
	index     map[string]*models.Task
	finalized map[string]bool
	started   bool

	wake chan struct{}
	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

// NewManager returns an idle Manager.
func NewManager(runner *Runner, opts ManagerOptions) *Manager {
	if opts.Lanes < 1 {
		opts.Lanes = consts.DefaultLanes
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = consts.DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = times.System{}
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		runner:    runner,
		lanes:     opts.Lanes,
		interval:  opts.PollInterval,
		clock:     opts.Clock,
		index:     make(map[string]*models.Task),
		finalized: make(map[string]bool),
		wake:      make(chan struct{}, 1),
		ctx:       ctx,
		stop:      stop,
	}
}

// Enqueue appends tasks in order without starting them.
func (m *Manager) Enqueue(cfgs []models.TaskConfig) []*models.Task {
	now := m.clock.Now()
	out := make([]*models.Task, 0, len(cfgs))

	m.mu.Lock()
	for _, c := range cfgs {
		t := models.NewTask(c, now)
		m.tasks = append(m.tasks, t)
		m.index[t.ID] = t
		out = append(out, t)
		logging.D(1, "Queued %s for %q", t.ID, c.URL)
	}
	m.mu.Unlock()

	m.signal()
	return out
}

// Start enables scheduling and launches the first task(s).
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.schedule()
	m.mu.Unlock()
}

// Poll starts queued tasks up to the lane limit, finalizes finished ones and
// reports the queue state. It never blocks on a download.
func (m *Manager) Poll() PollResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res PollResult
	res.Started = m.schedule()

	active := false
	res.Snapshots = make([]models.TaskSnapshot, 0, len(m.tasks))
	for _, t := range m.tasks {
		s := t.Snapshot()
		switch {
		case s.Status.IsActive():
			active = true
		case !m.finalized[s.ID]:
			m.finalized[s.ID] = true
			res.Finalized = append(res.Finalized, s.ID)
		}
		res.Snapshots = append(res.Snapshots, s)
	}
	res.Done = m.started && !active
	return res
}

// schedule starts the earliest queued tasks while lanes are free. Requires m.mu.
func (m *Manager) schedule() []string {
	if !m.started {
		return nil
	}

	running := 0
	for _, t := range m.tasks {
		if t.Status() == consts.StatusRunning {
			running++
		}
	}

	var started []string
	now := m.clock.Now()
	for _, t := range m.tasks {
		if running >= m.lanes {
			break
		}
		if !t.Begin(now) {
			continue
		}
		running++
		started = append(started, t.ID)
		m.launch(t)
	}
	return started
}

func (m *Manager) launch(t *models.Task) {
	logging.I("Starting download of %q", t.Config.URL)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.runner.Run(m.ctx, t)
		m.signal()
	}()
}

// signal wakes Run without blocking.
func (m *Manager) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// CancelAll cancels every running task and marks queued ones Cancelled.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	now := m.clock.Now()
	for _, t := range m.tasks {
		m.cancelLocked(t, now)
	}
	m.mu.Unlock()
	m.signal()
}

// RequestCancel cancels one task. Terminal tasks are left untouched.
func (m *Manager) RequestCancel(id string) error {
	m.mu.Lock()
	t, ok := m.index[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", errconsts.ErrTaskNotFound, id)
	}
	m.cancelLocked(t, m.clock.Now())
	m.mu.Unlock()
	m.signal()
	return nil
}

// cancelLocked requires m.mu, which keeps schedule from starting t meanwhile.
func (m *Manager) cancelLocked(t *models.Task, now time.Time) {
	switch t.Status() {
	case consts.StatusQueued:
		t.RequestCancel()
		t.Finish(consts.StatusCancelled, errconsts.NewTaskError(errconsts.ErrCancelled, t.ID, nil), now)
		logging.I("Cancelled queued download of %q", t.Config.URL)
	case consts.StatusRunning:
		t.RequestCancel()
	}
}

// Task looks a task up by id.
func (m *Manager) Task(id string) (*models.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.index[id]
	return t, ok
}

// Tasks returns the queue in order.
func (m *Manager) Tasks() []*models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Task, len(m.tasks))
	copy(out, m.tasks)
	return out
}

// Snapshot copies every task's state in queue order.
func (m *Manager) Snapshot() []models.TaskSnapshot {
	tasks := m.Tasks()
	out := make([]models.TaskSnapshot, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Snapshot())
	}
	return out
}

// Done reports whether the manager was started and nothing is queued or running.
func (m *Manager) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return false
	}
	for _, t := range m.tasks {
		if t.Status().IsActive() {
			return false
		}
	}
	return true
}

// Run starts the manager and polls until the queue is Done. If ctx ends first
// every task is cancelled, the runners are drained and ctx.Err() is returned.
func (m *Manager) Run(ctx context.Context, onPoll func(PollResult)) error {
	return m.drive(ctx, onPoll, true)
}

// Serve is Run for a long-lived queue: it keeps polling after the queue drains
// and returns only when ctx ends.
func (m *Manager) Serve(ctx context.Context, onPoll func(PollResult)) error {
	return m.drive(ctx, onPoll, false)
}

func (m *Manager) drive(ctx context.Context, onPoll func(PollResult), untilDone bool) error {
	m.Start()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		res := m.Poll()
		if onPoll != nil {
			onPoll(res)
		}
		if untilDone && res.Done {
			m.wg.Wait()
			return nil
		}

		select {
		case <-ctx.Done():
			m.CancelAll()
			m.wg.Wait()
			if onPoll != nil {
				onPoll(m.Poll())
			}
			return ctx.Err()
		case <-ticker.C:
		case <-m.wake:
		}
	}
}

// Shutdown cancels every runner and waits for them to exit.
func (m *Manager) Shutdown() {
	m.CancelAll()
	m.stop()
	m.wg.Wait()
}
