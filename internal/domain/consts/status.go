package consts

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TaskStatus is the lifecycle state of a download task.
type TaskStatus string

const (
	StatusQueued    TaskStatus = "queued"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
	StatusCancelled TaskStatus = "cancelled"
)

// IsTerminal reports whether the status can no longer change.
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the task is waiting or running.
func (s TaskStatus) IsActive() bool {
	return s == StatusQueued || s == StatusRunning
}

// DisplayName returns the status as shown to users ("Completed", "Running"...).
// Casers are stateful, so each call builds its own.
func (s TaskStatus) DisplayName() string {
	return cases.Title(language.English).String(string(s))
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}
