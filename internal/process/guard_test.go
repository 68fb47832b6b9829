package process_test

import (
	"context"
	"io"
	"testing"

	"tubeplus/internal/process"
	"tubeplus/internal/process/processtest"
)

func TestGuardReleaseKillsAndCloses(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{Hold: true})
	p, err := spawner.Spawn(context.Background(), "yt-dlp", []string{"https://example.com/v"})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}

	g := process.Acquire(p)
	g.Release()
	g.Release()

	fp := spawner.Processes()[0]
	if fp.Kills() != 1 {
		t.Fatalf("expected exactly one kill, got %d", fp.Kills())
	}
	if !fp.Closed() {
		t.Fatalf("expected output to be closed")
	}
	if !fp.Exited() {
		t.Fatalf("expected process to be reaped")
	}
}

func TestGuardSkipsKillAfterWait(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{Chunks: []string{"done\n"}})
	p, err := spawner.Spawn(context.Background(), "yt-dlp", nil)
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}

	if _, err := io.ReadAll(p.Output()); err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	g := process.Acquire(p)
	code, err := g.Wait()
	if err != nil || code != 0 {
		t.Fatalf("expected clean exit, got %d %v", code, err)
	}
	g.Release()

	if k := spawner.Processes()[0].Kills(); k != 0 {
		t.Fatalf("reaped process must not be killed, got %d kills", k)
	}
}
