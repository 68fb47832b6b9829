package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/utils/logging"
)

// ExecSpawner spawns real OS processes.
type ExecSpawner struct {
	// SpawnTimeout bounds the wait for the OS to confirm the start.
	SpawnTimeout time.Duration
	// Env is appended to the inherited environment.
	Env []string
}

// NewExecSpawner returns an ExecSpawner with the given confirmation timeout.
func NewExecSpawner(timeout time.Duration) *ExecSpawner {
	if timeout <= 0 {
		timeout = consts.DefaultSpawnTimeout
	}
	return &ExecSpawner{
		SpawnTimeout: timeout,
		Env:          []string{"PYTHONUNBUFFERED=1", "PYTHONIOENCODING=UTF-8"},
	}
}

// Spawn starts name with args, giving stdout and stderr a single shared pipe.
func (s *ExecSpawner) Spawn(ctx context.Context, name string, args []string) (Process, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("could not locate %q: %w", name, err)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe error: %w", err)
	}

	cmd := exec.Command(path, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.Env = append(os.Environ(), s.Env...)
	setProcessGroup(cmd)

	logging.D(1, "Spawning %s %s", name, strings.Join(args, " "))

	started := make(chan error, 1)
	go func() { started <- cmd.Start() }()

	timer := time.NewTimer(s.SpawnTimeout)
	defer timer.Stop()

	select {
	case err := <-started:
		// The child holds its own copy of the write end.
		pw.Close()
		if err != nil {
			pr.Close()
			return nil, fmt.Errorf("failed to start command: %w", err)
		}
		return &execProcess{cmd: cmd, out: pr}, nil

	case <-timer.C:
		go abandon(cmd, started, pr, pw)
		return nil, fmt.Errorf("start of %q not confirmed within %v", name, s.SpawnTimeout)

	case <-ctx.Done():
		go abandon(cmd, started, pr, pw)
		return nil, ctx.Err()
	}
}

// abandon reaps a start that completed after the caller gave up on it.
func abandon(cmd *exec.Cmd, started <-chan error, pr, pw *os.File) {
	if err := <-started; err == nil {
		if err := killGroup(cmd); err != nil {
			logging.E("Failed to kill abandoned process %d: %v", cmd.Process.Pid, err)
		}
		_ = cmd.Wait()
	}
	pw.Close()
	pr.Close()
}

type execProcess struct {
	cmd *exec.Cmd
	out *os.File

	waitOnce sync.Once
	code     int
	waitErr  error

	closeOnce sync.Once
}

func (p *execProcess) Output() io.Reader { return p.out }

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			p.code = 0
		case errors.As(err, &exitErr):
			p.code = exitErr.ExitCode()
		default:
			p.code, p.waitErr = -1, err
		}
	})
	return p.code, p.waitErr
}

func (p *execProcess) Kill() error {
	if err := killGroup(p.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *execProcess) Close() error {
	var err error
	p.closeOnce.Do(func() { err = p.out.Close() })
	return err
}
