package downloads_test

import (
	"testing"
	"time"

	"tubeplus/internal/command/builder"
	"tubeplus/internal/downloads"
	"tubeplus/internal/models"
	"tubeplus/internal/process"
)

const waitTimeout = 5 * time.Second

// newManager returns a Manager and a download directory. The directory is
// created first so its removal runs after Shutdown has drained the runners.
func newManager(t *testing.T, spawner process.Spawner, lanes int) (*downloads.Manager, string) {
	t.Helper()
	dir := t.TempDir()
	r := downloads.NewRunner(spawner, "yt-dlp", builder.Options{})
	m := downloads.NewManager(r, downloads.ManagerOptions{Lanes: lanes, PollInterval: 10 * time.Millisecond})
	t.Cleanup(m.Shutdown)
	return m, dir
}

func configs(dir string, urls ...string) []models.TaskConfig {
	out := make([]models.TaskConfig, 0, len(urls))
	for _, u := range urls {
		out = append(out, models.TaskConfig{URL: u, Directory: dir, Quality: models.Best()})
	}
	return out
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
