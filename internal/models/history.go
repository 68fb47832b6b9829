package models

import (
	"time"

	"tubeplus/internal/domain/consts"
)

// HistoryRecord is a finished task as stored in the history database.
type HistoryRecord struct {
	ID         int64             `json:"id"`
	TaskID     string            `json:"task_id"`
	URL        string            `json:"url"`
	Title      string            `json:"title,omitempty"`
	Directory  string            `json:"directory"`
	Quality    string            `json:"quality"`
	Status     consts.TaskStatus `json:"status"`
	Percent    float64           `json:"percent"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// HistoryFromSnapshot converts a terminal snapshot into a history record.
func HistoryFromSnapshot(s TaskSnapshot) HistoryRecord {
	return HistoryRecord{
		TaskID:     s.ID,
		URL:        s.URL,
		Title:      s.Title,
		Directory:  s.Directory,
		Quality:    s.Quality,
		Status:     s.Status,
		Percent:    s.Percent,
		Error:      s.Error,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}
