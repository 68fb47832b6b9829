package models_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/process"
	"tubeplus/internal/process/processtest"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// TestParseQuality runs checks on quality selector parsing -----------------------------------------------------------------------------
func TestParseQuality(t *testing.T) {
	cases := map[string]models.Quality{
		"":      models.Best(),
		"best":  models.Best(),
		"BEST":  models.Best(),
		"audio": models.AudioOnly(),
		"mp3":   models.AudioOnly(),
		"720":   models.Height(720),
		"1080p": models.Height(1080),
		" 144 ": models.Height(144),
	}
	for in, want := range cases {
		got, err := models.ParseQuality(in)
		if err != nil {
			t.Fatalf("ParseQuality(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseQuality(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestParseQuality_Invalid(t *testing.T) {
	for _, in := range []string{"999", "hd", "-1", "720i"} {
		if _, err := models.ParseQuality(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestQualityTextRoundTrip(t *testing.T) {
	var q models.Quality
	if err := q.UnmarshalText([]byte("480p")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := q.MarshalText()
	if string(b) != "480p" {
		t.Fatalf("expected 480p, got %s", b)
	}
}

// TestTask runs checks on task state transitions -----------------------------------------------------------------------------
func TestTaskIDFormat(t *testing.T) {
	task := models.NewTask(models.TaskConfig{URL: "https://example.com/a"}, t0)
	if !strings.HasPrefix(task.ID, "task-") || len(task.ID) != len("task-")+36 {
		t.Fatalf("unexpected id %q", task.ID)
	}
	if task.Status() != consts.StatusQueued {
		t.Fatalf("new task should be queued, got %s", task.Status())
	}
}

func TestTaskTerminalAbsorbs(t *testing.T) {
	task := models.NewTask(models.TaskConfig{URL: "u"}, t0)
	if !task.Begin(t0) {
		t.Fatalf("expected Begin to succeed")
	}
	task.SetPercent(40)
	if !task.Finish(consts.StatusFailed, nil, t0) {
		t.Fatalf("expected first Finish to succeed")
	}

	if task.Finish(consts.StatusCompleted, nil, t0) {
		t.Fatalf("terminal status must not change")
	}
	if task.Begin(t0) {
		t.Fatalf("terminal task must not restart")
	}
	if task.RequestCancel() {
		t.Fatalf("cancel on terminal task must be refused")
	}
	task.SetPercent(90)
	if task.Status() != consts.StatusFailed || task.Percent() != 40 {
		t.Fatalf("terminal task changed: %s %v", task.Status(), task.Percent())
	}
}

func TestTaskFinishRejectsNonTerminal(t *testing.T) {
	task := models.NewTask(models.TaskConfig{URL: "u"}, t0)
	if task.Finish(consts.StatusRunning, nil, t0) {
		t.Fatalf("Finish must only accept terminal statuses")
	}
}

func TestTaskCancelBeforeAttach(t *testing.T) {
	task := models.NewTask(models.TaskConfig{URL: "u"}, t0)
	task.Begin(t0)
	task.RequestCancel()

	select {
	case <-task.Cancelled():
	default:
		t.Fatalf("cancel channel should be closed")
	}

	spawner := processtest.NewSpawner(processtest.Script{Hold: true})
	p, _ := spawner.Spawn(context.Background(), "yt-dlp", nil)
	defer process.Acquire(p).Release()

	if task.AttachProcess(p) {
		t.Fatalf("attach after cancel must be refused")
	}
	if task.HasProcess() {
		t.Fatalf("no handle should be recorded")
	}
}

func TestTaskCancelKillsAttachedProcess(t *testing.T) {
	task := models.NewTask(models.TaskConfig{URL: "u"}, t0)
	task.Begin(t0)

	spawner := processtest.NewSpawner(processtest.Script{Hold: true})
	p, _ := spawner.Spawn(context.Background(), "yt-dlp", nil)
	defer process.Acquire(p).Release()

	if !task.AttachProcess(p) {
		t.Fatalf("expected attach to succeed")
	}
	task.RequestCancel()
	task.RequestCancel()

	if k := spawner.Processes()[0].Kills(); k != 2 {
		t.Fatalf("expected kill on each request while attached, got %d", k)
	}
}

func TestSnapshotCompletedIsFull(t *testing.T) {
	task := models.NewTask(models.TaskConfig{URL: "u", Title: "Clip", Quality: models.Height(720)}, t0)
	task.Begin(t0)
	task.SetPercent(99.1)
	task.Finish(consts.StatusCompleted, nil, t0.Add(time.Minute))

	s := task.Snapshot()
	if s.Percent != 100 || s.Quality != "720p" || s.Label() != "Clip" {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	if !s.FinishedAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("unexpected finish time %v", s.FinishedAt)
	}
}
