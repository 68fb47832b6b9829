// Package errconsts holds error values and messages shared across packages.
package errconsts

import (
	"errors"
	"fmt"
)

// Task failure kinds.
var (
	ErrSpawnFailure = errors.New("spawn failure")
	ErrAbnormalExit = errors.New("abnormal exit")
	ErrIOFailure    = errors.New("i/o failure")
	ErrCancelled    = errors.New("cancelled")
)

// ErrTaskNotFound is returned for unknown task ids.
var ErrTaskNotFound = errors.New("task not found")

// Messages
const (
	ConfigFileUpdateFail = "failed to read config file %q: %w"
)

// TaskError classifies a terminal task failure.
type TaskError struct {
	Kind   error
	TaskID string
	Err    error
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("task %s: %v", e.TaskID, e.Kind)
	}
	return fmt.Sprintf("task %s: %v: %v", e.TaskID, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewTaskError builds a TaskError of the given kind.
func NewTaskError(kind error, taskID string, err error) *TaskError {
	return &TaskError{Kind: kind, TaskID: taskID, Err: err}
}

// ExitError records a non-zero exit together with the tool's last output lines.
type ExitError struct {
	Code int
	Tail []string
}

func (e *ExitError) Error() string {
	if len(e.Tail) == 0 {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return fmt.Sprintf("exit status %d: %s", e.Code, e.Tail[len(e.Tail)-1])
}
