package downloads_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/errconsts"
	"tubeplus/internal/downloads"
	"tubeplus/internal/models"
	"tubeplus/internal/process/processtest"
)

func statuses(tasks []*models.Task) []consts.TaskStatus {
	out := make([]consts.TaskStatus, len(tasks))
	for i, t := range tasks {
		out[i] = t.Status()
	}
	return out
}

func countRunning(snaps []models.TaskSnapshot) int {
	n := 0
	for _, s := range snaps {
		if s.Status == consts.StatusRunning {
			n++
		}
	}
	return n
}

// TestManager runs checks on queue scheduling -----------------------------------------------------------------------------
func TestManager_SingleLaneOrdering(t *testing.T) {
	urls := []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}
	gates := make([]chan struct{}, len(urls))
	spawner := processtest.NewSpawner()
	for i, u := range urls {
		gates[i] = make(chan struct{})
		spawner.ScriptFor(u, processtest.Script{
			Chunks: []string{"[download]  50.0% of 1MiB\n"},
			Gate:   gates[i],
		})
	}

	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, urls...))
	for _, task := range tasks {
		if task.Status() != consts.StatusQueued {
			t.Fatalf("enqueue must not start tasks")
		}
	}
	m.Start()

	for i := range tasks {
		waitFor(t, "task running", func() bool {
			res := m.Poll()
			if countRunning(res.Snapshots) > 1 {
				t.Fatalf("more than one task running: %v", statuses(tasks))
			}
			return tasks[i].Status() == consts.StatusRunning
		})
		for j := range tasks {
			want := consts.StatusQueued
			switch {
			case j < i:
				want = consts.StatusCompleted
			case j == i:
				want = consts.StatusRunning
			}
			if got := tasks[j].Status(); got != want {
				t.Fatalf("with task %d running, task %d is %s, want %s", i, j, got, want)
			}
		}
		close(gates[i])
		waitFor(t, "task completed", func() bool { return tasks[i].Status() == consts.StatusCompleted })
	}

	waitFor(t, "queue done", func() bool { return m.Poll().Done })

	calls := spawner.Calls()
	if len(calls) != len(urls) {
		t.Fatalf("expected %d spawns, got %d", len(urls), len(calls))
	}
	for i, c := range calls {
		if c.Args[len(c.Args)-1] != urls[i] {
			t.Fatalf("spawn %d was for %q, want %q", i, c.Args[len(c.Args)-1], urls[i])
		}
	}
}

func TestManager_EndToEnd(t *testing.T) {
	spawner := processtest.NewSpawner()
	spawner.ScriptFor("https://example.com/ok1", processtest.Script{
		Chunks: []string{"[download]  12.3% of 1MiB\n", "[download]  45.6% of 1MiB\n", "[download] 100% of 1MiB\n"},
	})
	spawner.ScriptFor("https://example.com/bad", processtest.Script{SpawnErr: errors.New("exec: \"yt-dlp\": executable file not found")})
	spawner.ScriptFor("https://example.com/ok2", processtest.Script{
		Chunks: []string{"[download]  99.0% of 1MiB\n"},
	})

	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, "https://example.com/ok1", "https://example.com/bad", "https://example.com/ok2"))

	var finalized []string
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	err := m.Run(ctx, func(res downloads.PollResult) {
		finalized = append(finalized, res.Finalized...)
	})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	want := []consts.TaskStatus{consts.StatusCompleted, consts.StatusFailed, consts.StatusCompleted}
	got := statuses(tasks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", got, want)
		}
	}
	if !m.Done() {
		t.Fatalf("queue should be done")
	}
	if len(finalized) != 3 {
		t.Fatalf("expected each task finalized once, got %v", finalized)
	}

	if !errors.Is(tasks[1].Err(), errconsts.ErrSpawnFailure) {
		t.Fatalf("expected spawn failure, got %v", tasks[1].Err())
	}
	if tasks[0].Percent() != 100 {
		t.Fatalf("completed task should be at 100%%, got %v", tasks[0].Percent())
	}
	if calls := spawner.Calls(); len(calls) != 3 {
		t.Fatalf("expected a spawn attempt per task, got %d", len(calls))
	}
}

func TestManager_AbnormalExitCarriesTail(t *testing.T) {
	spawner := processtest.NewSpawner()
	spawner.ScriptFor("https://example.com/bad", processtest.Script{
		Chunks:   []string{"[youtube] bad: Downloading webpage\n", "ERROR: [youtube] bad: Video unavailable\n"},
		ExitCode: 1,
	})

	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, "https://example.com/bad", "https://example.com/next"))

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := m.Run(ctx, nil); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	failErr := tasks[0].Err()
	if !errors.Is(failErr, errconsts.ErrAbnormalExit) {
		t.Fatalf("expected abnormal exit, got %v", failErr)
	}
	var exitErr *errconsts.ExitError
	if !errors.As(failErr, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit code 1, got %v", failErr)
	}
	if !strings.Contains(failErr.Error(), "Video unavailable") {
		t.Fatalf("error should carry yt-dlp's message, got %q", failErr)
	}
	if tasks[1].Status() != consts.StatusCompleted {
		t.Fatalf("task after an abnormal exit should complete, got %s", tasks[1].Status())
	}
}

func TestManager_SpawnFailureIsolation(t *testing.T) {
	spawner := processtest.NewSpawner()
	spawner.ScriptFor("https://example.com/nospawn", processtest.Script{SpawnErr: errors.New("executable not found")})

	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, "https://example.com/nospawn", "https://example.com/fine"))

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := m.Run(ctx, nil); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if tasks[0].Status() != consts.StatusFailed || !errors.Is(tasks[0].Err(), errconsts.ErrSpawnFailure) {
		t.Fatalf("expected spawn failure, got %s %v", tasks[0].Status(), tasks[0].Err())
	}
	if tasks[0].HasProcess() {
		t.Fatalf("failed spawn must not record a handle")
	}
	if tasks[1].Status() != consts.StatusCompleted {
		t.Fatalf("next task should still complete, got %s", tasks[1].Status())
	}
	if n := len(spawner.Processes()); n != 1 {
		t.Fatalf("expected one real process, got %d", n)
	}
}

func TestManager_CancellationWinsOverExit(t *testing.T) {
	gate := make(chan struct{})
	spawner := processtest.NewSpawner(processtest.Script{
		Chunks:     []string{"[download]  70.0% of 1MiB\n"},
		Gate:       gate,
		IgnoreKill: true,
		ExitCode:   0,
	})

	m, dir := newManager(t, spawner, 1)
	task := m.Enqueue(configs(dir, "https://example.com/race"))[0]
	m.Start()

	waitFor(t, "process attached", func() bool { return task.HasProcess() && task.Percent() == 70 })
	if err := m.RequestCancel(task.ID); err != nil {
		t.Fatalf("unexpected cancel error: %v", err)
	}
	// The process now exits cleanly on its own.
	close(gate)

	waitFor(t, "task terminal", func() bool { return task.Status().IsTerminal() })
	if task.Status() != consts.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", task.Status())
	}
	if !errors.Is(task.Err(), errconsts.ErrCancelled) {
		t.Fatalf("expected cancelled error, got %v", task.Err())
	}
	if task.HasProcess() {
		t.Fatalf("handle should be cleared")
	}
	p := spawner.Processes()[0]
	if p.Kills() == 0 || !p.Closed() {
		t.Fatalf("process should be killed and closed (kills=%d closed=%v)", p.Kills(), p.Closed())
	}
}

func TestManager_CancelAll(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{Hold: true})

	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, "https://example.com/a", "https://example.com/b", "https://example.com/c"))
	m.Start()

	waitFor(t, "first task attached", func() bool { return tasks[0].HasProcess() })
	m.CancelAll()
	waitFor(t, "queue done", func() bool { return m.Poll().Done })

	for i, task := range tasks {
		if task.Status() != consts.StatusCancelled {
			t.Fatalf("task %d: expected cancelled, got %s", i, task.Status())
		}
	}
	if n := len(spawner.Calls()); n != 1 {
		t.Fatalf("queued tasks must never spawn, got %d spawns", n)
	}
}

func TestManager_ReadFailure(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{
		Chunks:  []string{"[download]  5.0% of 1MiB\n"},
		ReadErr: errors.New("pipe broke"),
	})

	m, dir := newManager(t, spawner, 1)
	task := m.Enqueue(configs(dir, "https://example.com/io"))[0]

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := m.Run(ctx, nil); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}

	if task.Status() != consts.StatusFailed || !errors.Is(task.Err(), errconsts.ErrIOFailure) {
		t.Fatalf("expected i/o failure, got %s %v", task.Status(), task.Err())
	}
	if spawner.Processes()[0].Kills() == 0 {
		t.Fatalf("process must be killed after a read failure")
	}
}

func TestManager_LanesFIFO(t *testing.T) {
	spawner := processtest.NewSpawner(
		processtest.Script{Hold: true},
		processtest.Script{Hold: true},
		processtest.Script{Hold: true},
	)

	m, dir := newManager(t, spawner, 2)
	tasks := m.Enqueue(configs(dir, "https://example.com/1", "https://example.com/2", "https://example.com/3"))
	m.Start()

	res := m.Poll()
	if countRunning(res.Snapshots) != 2 {
		t.Fatalf("expected two running, got %v", statuses(tasks))
	}
	if tasks[2].Status() != consts.StatusQueued {
		t.Fatalf("third task should wait for a lane")
	}

	if err := m.RequestCancel(tasks[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitFor(t, "third task running", func() bool {
		m.Poll()
		return tasks[2].Status() == consts.StatusRunning
	})
	if tasks[1].Status() != consts.StatusRunning {
		t.Fatalf("second task should still be running, got %s", tasks[1].Status())
	}
}

func TestManager_RequestCancelUnknown(t *testing.T) {
	m, _ := newManager(t, processtest.NewSpawner(), 1)
	if err := m.RequestCancel("task-missing"); !errors.Is(err, errconsts.ErrTaskNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestManager_RequestCancelQueued(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{Hold: true})
	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, "https://example.com/1", "https://example.com/2"))
	m.Start()

	if err := m.RequestCancel(tasks[1].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tasks[1].Status() != consts.StatusCancelled {
		t.Fatalf("queued task should be cancelled immediately, got %s", tasks[1].Status())
	}
	if tasks[0].Status() != consts.StatusRunning {
		t.Fatalf("running task must be unaffected, got %s", tasks[0].Status())
	}
}

func TestManager_RunContextCancel(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{Hold: true})
	m, dir := newManager(t, spawner, 1)
	tasks := m.Enqueue(configs(dir, "https://example.com/1", "https://example.com/2"))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx, nil) }()

	waitFor(t, "first task attached", func() bool { return tasks[0].HasProcess() })
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	for i, task := range tasks {
		if task.Status() != consts.StatusCancelled {
			t.Fatalf("task %d: expected cancelled, got %s", i, task.Status())
		}
	}
}

func TestManager_EnqueueWhileRunning(t *testing.T) {
	gate := make(chan struct{})
	spawner := processtest.NewSpawner(processtest.Script{Gate: gate})
	m, dir := newManager(t, spawner, 1)
	first := m.Enqueue(configs(dir, "https://example.com/1"))[0]
	m.Start()

	waitFor(t, "first running", func() bool { return first.Status() == consts.StatusRunning })
	second := m.Enqueue(configs(dir, "https://example.com/2"))[0]
	if snaps := m.Snapshot(); len(snaps) != 2 || snaps[1].ID != second.ID {
		t.Fatalf("late task should be appended, got %+v", snaps)
	}

	close(gate)
	waitFor(t, "both done", func() bool {
		m.Poll()
		return m.Done()
	})
	if second.Status() != consts.StatusCompleted {
		t.Fatalf("late task should complete, got %s", second.Status())
	}
}

func TestManager_OutputDrained(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{
		Chunks: []string{strings.Repeat("x", 8192), "\n[download]  33.0% of 1MiB\n"},
	})
	m, dir := newManager(t, spawner, 1)
	task := m.Enqueue(configs(dir, "https://example.com/big"))[0]

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := m.Run(ctx, nil); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if task.Status() != consts.StatusCompleted {
		t.Fatalf("expected completed, got %s", task.Status())
	}
}
