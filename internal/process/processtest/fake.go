// Package processtest provides scripted processes for tests.
package processtest

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"tubeplus/internal/process"
)

// Script describes how a Process behaves.
type Script struct {
	// Chunks are written to the output stream in order.
	Chunks []string
	// Interval is the pause between chunks.
	Interval time.Duration
	ExitCode int
	// SpawnErr makes Spawn fail.
	SpawnErr error
	// ReadErr ends the output stream with this error instead of EOF.
	ReadErr error
	// Hold keeps the process alive after its output until killed.
	Hold bool
	// Gate, if set, delays exit until it is closed.
	Gate <-chan struct{}
	// IgnoreKill makes Kill a no-op apart from being counted.
	IgnoreKill bool
}

// Call records a Spawn invocation.
type Call struct {
	Name string
	Args []string
}

// Spawner hands out scripted processes.
//
// Scripts registered with ScriptFor are matched on the last argument (the
// URL); the rest are consumed in order. With nothing left it spawns a process
// that exits 0 without output.
type Spawner struct {
	mu      sync.Mutex
	queue   []Script
	byLast  map[string]Script
	calls   []Call
	procs   []*Process
	nextPid int
}

// NewSpawner returns a Spawner serving scripts in order.
func NewSpawner(scripts ...Script) *Spawner {
	return &Spawner{
		queue:   scripts,
		byLast:  make(map[string]Script),
		nextPid: 1000,
	}
}

// ScriptFor registers a script for spawns whose last argument equals last.
func (f *Spawner) ScriptFor(last string, s Script) {
	f.mu.Lock()
	f.byLast[last] = s
	f.mu.Unlock()
}

// Spawn implements process.Spawner.
func (f *Spawner) Spawn(_ context.Context, name string, args []string) (process.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})

	var script Script
	last := ""
	if len(args) > 0 {
		last = args[len(args)-1]
	}
	if s, ok := f.byLast[last]; ok {
		script = s
	} else if len(f.queue) > 0 {
		script = f.queue[0]
		f.queue = f.queue[1:]
	}

	if script.SpawnErr != nil {
		return nil, script.SpawnErr
	}

	f.nextPid++
	p := newProcess(script, f.nextPid)
	f.procs = append(f.procs, p)
	go p.run()
	return p, nil
}

// Calls returns the recorded Spawn invocations.
func (f *Spawner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Processes returns every process spawned so far.
func (f *Spawner) Processes() []*Process {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Process, len(f.procs))
	copy(out, f.procs)
	return out
}

// Process is a scripted Process.
type Process struct {
	script Script
	pid    int

	pr *io.PipeReader
	pw *io.PipeWriter

	killed   chan struct{}
	killOnce sync.Once
	kills    atomic.Int32
	closed   atomic.Bool

	done chan struct{}
	code int
}

func newProcess(s Script, pid int) *Process {
	pr, pw := io.Pipe()
	return &Process{
		script: s,
		pid:    pid,
		pr:     pr,
		pw:     pw,
		killed: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (p *Process) run() {
	defer close(p.done)

	for i, c := range p.script.Chunks {
		if i > 0 && p.script.Interval > 0 {
			select {
			case <-time.After(p.script.Interval):
			case <-p.killed:
				p.code = -1
				return
			}
		}
		if _, err := p.pw.Write([]byte(c)); err != nil {
			p.code = -1
			return
		}
	}

	switch {
	case p.script.Gate != nil:
		select {
		case <-p.script.Gate:
		case <-p.killed:
			p.code = -1
			return
		}
	case p.script.Hold:
		<-p.killed
		p.code = -1
		return
	}

	if p.script.ReadErr != nil {
		p.pw.CloseWithError(p.script.ReadErr)
	} else {
		p.pw.Close()
	}
	p.code = p.script.ExitCode
}

// Output implements process.Process.
func (p *Process) Output() io.Reader { return p.pr }

// Wait implements process.Process.
func (p *Process) Wait() (int, error) {
	<-p.done
	return p.code, nil
}

// Kill implements process.Process.
func (p *Process) Kill() error {
	p.kills.Add(1)
	if p.script.IgnoreKill {
		return nil
	}
	p.killOnce.Do(func() {
		close(p.killed)
		p.pw.Close()
	})
	return nil
}

// Close implements process.Process.
func (p *Process) Close() error {
	p.closed.Store(true)
	return p.pr.Close()
}

// Pid implements process.Process.
func (p *Process) Pid() int { return p.pid }

// Kills reports how many times Kill was called.
func (p *Process) Kills() int { return int(p.kills.Load()) }

// Closed reports whether the output stream was released.
func (p *Process) Closed() bool { return p.closed.Load() }

// Exited reports whether the process has finished.
func (p *Process) Exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
