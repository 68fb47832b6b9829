// Package downloads runs queued yt-dlp downloads.
package downloads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"tubeplus/internal/command/builder"
	"tubeplus/internal/domain/command"
	"tubeplus/internal/domain/consts"
	"tubeplus/internal/domain/errconsts"
	"tubeplus/internal/models"
	"tubeplus/internal/parsing"
	"tubeplus/internal/process"
	"tubeplus/internal/times"
	"tubeplus/internal/utils/logging"
)

// Runner drives a single task from Running to a terminal status.
type Runner struct {
	Spawner  process.Spawner
	Clock    times.Clock
	ToolPath string
	Options  builder.Options
}

// NewRunner returns a Runner using the system clock.
func NewRunner(spawner process.Spawner, toolPath string, opts builder.Options) *Runner {
	if toolPath == "" {
		toolPath = command.YTDLP
	}
	return &Runner{
		Spawner:  spawner,
		Clock:    times.System{},
		ToolPath: toolPath,
		Options:  opts,
	}
}

// outcome is how the output loop ended.
type outcome int

const (
	outcomeEOF outcome = iota
	outcomeCancelled
	outcomeReadErr
)

// Run executes a task that has already been moved to Running. It returns once
// the task is terminal and its process has been reaped.
func (r *Runner) Run(ctx context.Context, t *models.Task) consts.TaskStatus {
	if t.Status() != consts.StatusRunning {
		return t.Status()
	}
	if t.CancelRequested() || ctx.Err() != nil {
		return r.finish(t, consts.StatusCancelled, errconsts.ErrCancelled, nil)
	}

	if err := os.MkdirAll(t.Config.Directory, consts.PermsVideoDir); err != nil {
		return r.finish(t, consts.StatusFailed, errconsts.ErrSpawnFailure, fmt.Errorf("failed to create directory %q: %w", t.Config.Directory, err))
	}

	args := builder.DownloadArgs(t.Config, r.Options)
	proc, err := r.Spawner.Spawn(ctx, r.ToolPath, args)
	if err != nil {
		if ctx.Err() != nil || t.CancelRequested() {
			return r.finish(t, consts.StatusCancelled, errconsts.ErrCancelled, nil)
		}
		return r.finish(t, consts.StatusFailed, errconsts.ErrSpawnFailure, err)
	}

	guard := process.Acquire(proc)
	if !t.AttachProcess(proc) {
		guard.Release()
		return r.finish(t, consts.StatusCancelled, errconsts.ErrCancelled, nil)
	}
	logging.D(1, "Task %s running as process %d", t.ID, proc.Pid())

	scanner := parsing.NewScanner(consts.OutputTailLines)
	how, readErr := r.consume(ctx, t, proc.Output(), scanner)

	if how != outcomeEOF {
		guard.Kill()
	}
	code, waitErr := r.wait(ctx, t, guard)
	guard.Release()
	t.DetachProcess()

	if p, ok := scanner.Flush(); ok {
		t.SetPercent(p)
	}

	// Cancellation wins over whatever the process did on its own.
	if how == outcomeCancelled || t.CancelRequested() || ctx.Err() != nil {
		return r.finish(t, consts.StatusCancelled, errconsts.ErrCancelled, nil)
	}

	switch {
	case how == outcomeReadErr:
		return r.finish(t, consts.StatusFailed, errconsts.ErrIOFailure, readErr)
	case waitErr != nil:
		return r.finish(t, consts.StatusFailed, errconsts.ErrIOFailure, waitErr)
	case code != 0:
		return r.finish(t, consts.StatusFailed, errconsts.ErrAbnormalExit, &errconsts.ExitError{Code: code, Tail: scanner.Tail()})
	}
	return r.finish(t, consts.StatusCompleted, nil, nil)
}

// consume feeds output to the scanner until EOF, a read error or cancellation.
func (r *Runner) consume(ctx context.Context, t *models.Task, out io.Reader, scanner *parsing.Scanner) (outcome, error) {
	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go pump(out, chunks, readErr, done)

	for {
		select {
		case <-t.Cancelled():
			return outcomeCancelled, nil

		case <-ctx.Done():
			return outcomeCancelled, nil

		case b := <-chunks:
			if p, ok := scanner.Feed(b); ok {
				t.SetPercent(p)
				logging.D(3, "Task %s at %.1f%%", t.ID, p)
			}

		case err := <-readErr:
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return outcomeEOF, nil
			}
			return outcomeReadErr, fmt.Errorf("reading output: %w", err)
		}
	}
}

// pump performs blocking reads and hands each chunk over.
func pump(out io.Reader, chunks chan<- []byte, readErr chan<- error, done <-chan struct{}) {
	buf := make([]byte, consts.ReadBufferSize)
	for {
		n, err := out.Read(buf)
		if n > 0 {
			b := make([]byte, n)
			copy(b, buf[:n])
			select {
			case chunks <- b:
			case <-done:
				return
			}
		}
		if err != nil {
			readErr <- err
			return
		}
	}
}

// wait reaps the process, killing it if cancellation arrives first.
func (r *Runner) wait(ctx context.Context, t *models.Task, guard *process.Guard) (int, error) {
	type result struct {
		code int
		err  error
	}
	res := make(chan result, 1)
	go func() {
		code, err := guard.Wait()
		res <- result{code, err}
	}()

	select {
	case out := <-res:
		return out.code, out.err
	case <-t.Cancelled():
	case <-ctx.Done():
	}
	guard.Kill()
	out := <-res
	return out.code, out.err
}

func (r *Runner) finish(t *models.Task, status consts.TaskStatus, kind, cause error) consts.TaskStatus {
	var err error
	if kind != nil {
		err = errconsts.NewTaskError(kind, t.ID, cause)
	}
	if !t.Finish(status, err, r.Clock.Now()) {
		return t.Status()
	}

	switch status {
	case consts.StatusCompleted:
		logging.S("Finished downloading %q", t.Config.URL)
	case consts.StatusCancelled:
		logging.I("Cancelled download of %q", t.Config.URL)
	default:
		logging.E("Download of %q failed: %v", t.Config.URL, err)
	}
	return status
}
