package process

import (
	"sync"

	"tubeplus/internal/utils/logging"
)

// Guard owns a spawned process until released.
//
// Release kills the process if it has not been reaped, waits for it and
// closes its output. It is safe to call more than once.
type Guard struct {
	p Process

	mu     sync.Mutex
	waited bool
	code   int
	err    error

	releaseOnce sync.Once
}

// Acquire takes ownership of p.
func Acquire(p Process) *Guard {
	return &Guard{p: p}
}

// Process returns the guarded process.
func (g *Guard) Process() Process { return g.p }

// Wait reaps the process once and caches the result.
func (g *Guard) Wait() (int, error) {
	code, err := g.p.Wait()
	g.mu.Lock()
	g.waited, g.code, g.err = true, code, err
	g.mu.Unlock()
	return code, err
}

// Kill terminates the process unless it was already reaped.
func (g *Guard) Kill() {
	g.mu.Lock()
	waited := g.waited
	g.mu.Unlock()
	if waited {
		return
	}
	if err := g.p.Kill(); err != nil {
		logging.E("Failed to kill process %d: %v", g.p.Pid(), err)
	}
}

// Release kills, reaps and closes the process.
func (g *Guard) Release() {
	g.releaseOnce.Do(func() {
		g.Kill()
		if _, err := g.Wait(); err != nil {
			logging.D(2, "Wait on process %d: %v", g.p.Pid(), err)
		}
		if err := g.p.Close(); err != nil {
			logging.D(2, "Closing output of process %d: %v", g.p.Pid(), err)
		}
	})
}
