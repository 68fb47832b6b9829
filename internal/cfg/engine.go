package cfg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tubeplus/internal/database"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/paths"
	"tubeplus/internal/downloads"
	"tubeplus/internal/models"
	"tubeplus/internal/playlist"
	"tubeplus/internal/process"
	"tubeplus/internal/progress"
	"tubeplus/internal/repo"
	"tubeplus/internal/utils/logging"
)

// newSpawner is replaced in tests.
var newSpawner = func(timeout time.Duration) process.Spawner {
	return process.NewExecSpawner(timeout)
}

var errDownloadsFailed = errors.New("one or more downloads did not complete")

// engine is everything one command run needs.
type engine struct {
	settings settings
	manager  *downloads.Manager
	reporter *progress.Reporter
	expander *playlist.Expander

	db      *database.Database
	store   *repo.HistoryStore
	history *progress.History
}

func newEngine(ctx context.Context, s settings, out io.Writer) *engine {
	spawner := newSpawner(s.spawnTimeout)

	runner := downloads.NewRunner(spawner, s.ytdlpPath, s.builder)
	manager := downloads.NewManager(runner, downloads.ManagerOptions{
		Lanes:        s.lanes,
		PollInterval: s.pollInterval,
	})

	e := &engine{
		settings: s,
		manager:  manager,
		expander: playlist.NewExpander(spawner, s.ytdlpPath, s.builder, s.playlistTimeout),
	}

	lookup := func(id string) (models.TaskSnapshot, bool) {
		t, ok := manager.Task(id)
		if !ok {
			return models.TaskSnapshot{}, false
		}
		return t.Snapshot(), true
	}
	sinks := progress.Multi{progress.NewConsole(out, lookup), progress.NewLog(lookup)}

	if s.history {
		if err := e.openHistory(); err != nil {
			logging.W("History disabled: %v", err)
		} else {
			e.history = progress.NewHistory(e.store, lookup)
			e.history.Start(ctx)
			sinks = append(sinks, e.history)
		}
	}

	e.reporter = progress.NewReporter(sinks, s.assumedBytes, nil)
	return e
}

func (e *engine) openHistory() error {
	db, err := database.Open(paths.DBFilePath)
	if err != nil {
		return err
	}
	e.db = db
	e.store = repo.GetHistoryStore(db.DB)
	return nil
}

func (e *engine) onPoll(res downloads.PollResult) {
	e.reporter.Report(res.Snapshots)
}

// runToCompletion drives the queue until every task is terminal and prints
// a summary. ctx ending cancels whatever is left.
func (e *engine) runToCompletion(ctx context.Context, out io.Writer) error {
	err := e.manager.Run(ctx, e.onPoll)
	snaps := e.manager.Snapshot()
	printSummary(out, snaps)

	if err != nil {
		return fmt.Errorf("downloads interrupted: %w", err)
	}
	for _, s := range snaps {
		if s.Status != consts.StatusCompleted {
			return errDownloadsFailed
		}
	}
	return nil
}

// close stops the queue and flushes pending history writes.
func (e *engine) close() {
	e.manager.Shutdown()
	if e.history != nil {
		e.history.Stop()
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			logging.E("Failed to close database: %v", err)
		}
	}
}
