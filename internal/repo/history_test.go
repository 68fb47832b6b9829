package repo_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tubeplus/internal/database"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/repo"
)

func openStore(t *testing.T) *repo.HistoryStore {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "tubeplus.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repo.GetHistoryStore(db.DB)
}

func TestHistoryStore_RecordAndLatest(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	recs := []models.HistoryRecord{
		{TaskID: "task-1", URL: "https://example.com/1", Quality: "best", Status: consts.StatusCompleted, Percent: 100, StartedAt: start, FinishedAt: start.Add(time.Minute)},
		{TaskID: "task-2", URL: "https://example.com/2", Title: "Two", Status: consts.StatusFailed, Percent: 12, Error: "abnormal exit", StartedAt: start},
		{TaskID: "task-3", URL: "https://example.com/1", Status: consts.StatusCancelled},
	}
	for _, r := range recs {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("unexpected record error: %v", err)
		}
	}

	got, err := store.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected query error: %v", err)
	}
	if len(got) != 2 || got[0].TaskID != "task-3" || got[1].TaskID != "task-2" {
		t.Fatalf("expected newest two records, got %+v", got)
	}
	if got[1].Title != "Two" || got[1].Error != "abnormal exit" || got[1].Status != consts.StatusFailed {
		t.Fatalf("fields not round-tripped: %+v", got[1])
	}
	if !got[0].StartedAt.IsZero() {
		t.Fatalf("missing start time should stay zero, got %v", got[0].StartedAt)
	}

	all, err := store.Latest(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all 3 records, got %d (%v)", len(all), err)
	}
	if !all[2].FinishedAt.Equal(start.Add(time.Minute)) {
		t.Fatalf("finish time not round-tripped: %v", all[2].FinishedAt)
	}
}

func TestHistoryStore_ForURL(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	for _, id := range []string{"task-a", "task-b"} {
		if err := store.Record(ctx, models.HistoryRecord{TaskID: id, URL: "https://example.com/x", Status: consts.StatusCompleted}); err != nil {
			t.Fatalf("unexpected record error: %v", err)
		}
	}
	store.Record(ctx, models.HistoryRecord{TaskID: "task-c", URL: "https://example.com/y", Status: consts.StatusCompleted})

	got, err := store.ForURL(ctx, "https://example.com/x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].TaskID != "task-b" {
		t.Fatalf("unexpected records %+v", got)
	}
	if _, err := store.ForURL(ctx, ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestHistoryStore_RejectsNonTerminal(t *testing.T) {
	store := openStore(t)
	err := store.Record(context.Background(), models.HistoryRecord{TaskID: "task-r", URL: "u", Status: consts.StatusRunning})
	if err == nil {
		t.Fatalf("expected error for non-terminal status")
	}
}
