package processtest_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"tubeplus/internal/process/processtest"
)

func TestSpawnerScriptForMatchesLastArg(t *testing.T) {
	spawner := processtest.NewSpawner()
	spawner.ScriptFor("https://example.com/bad", processtest.Script{ExitCode: 2})

	p, err := spawner.Spawn(context.Background(), "yt-dlp", []string{"-f", "b", "https://example.com/bad"})
	if err != nil {
		t.Fatalf("unexpected spawn error: %v", err)
	}
	io.Copy(io.Discard, p.Output())
	if code, _ := p.Wait(); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if calls := spawner.Calls(); len(calls) != 1 || calls[0].Name != "yt-dlp" {
		t.Fatalf("unexpected calls %+v", calls)
	}
}

func TestSpawnerQueueAndSpawnError(t *testing.T) {
	spawner := processtest.NewSpawner(processtest.Script{SpawnErr: errors.New("missing")})

	if _, err := spawner.Spawn(context.Background(), "yt-dlp", []string{"u1"}); err == nil {
		t.Fatal("expected scripted spawn error")
	}
	p, err := spawner.Spawn(context.Background(), "yt-dlp", []string{"u2"})
	if err != nil {
		t.Fatalf("exhausted queue should spawn a clean process: %v", err)
	}
	io.Copy(io.Discard, p.Output())
	if code, _ := p.Wait(); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if n := len(spawner.Processes()); n != 1 {
		t.Fatalf("failed spawns must not be tracked, got %d processes", n)
	}
}
