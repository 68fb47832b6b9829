package consts

// Database tables.
const (
	DBHistory = "history"
)

// History columns.
const (
	QHistID         = "id"
	QHistTaskID     = "task_id"
	QHistURL        = "url"
	QHistTitle      = "title"
	QHistDirectory  = "directory"
	QHistQuality    = "quality"
	QHistStatus     = "status"
	QHistPercent    = "percent"
	QHistError      = "error"
	QHistStartedAt  = "started_at"
	QHistFinishedAt = "finished_at"
)
