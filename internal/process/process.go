// Package process spawns and supervises external downloader processes.
package process

import (
	"context"
	"io"
)

// Process is a running child whose stdout and stderr share one stream.
type Process interface {
	// Output returns the merged stdout/stderr stream.
	Output() io.Reader
	// Wait blocks until exit. err is non-nil only when no exit code exists.
	Wait() (exitCode int, err error)
	// Kill force-terminates the process and its children.
	Kill() error
	// Close releases the output stream.
	Close() error
	Pid() int
}

// Spawner starts processes.
type Spawner interface {
	Spawn(ctx context.Context, name string, args []string) (Process, error)
}
