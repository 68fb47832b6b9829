// Package repo holds database stores.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tubeplus/internal/domain/consts"
	"tubeplus/internal/models"
	"tubeplus/internal/utils/logging"

	"github.com/Masterminds/squirrel"
)

// HistoryStore reads and writes finished downloads.
type HistoryStore struct {
	DB *sql.DB
}

// GetHistoryStore returns a history store instance with injected database.
func GetHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{
		DB: db,
	}
}

// Record inserts one history row.
func (hs *HistoryStore) Record(ctx context.Context, rec models.HistoryRecord) error {
	if !rec.Status.IsTerminal() {
		return fmt.Errorf("refusing to record non-terminal status %q for %q", rec.Status, rec.URL)
	}

	query := squirrel.Insert(consts.DBHistory).
		Columns(
			consts.QHistTaskID,
			consts.QHistURL,
			consts.QHistTitle,
			consts.QHistDirectory,
			consts.QHistQuality,
			consts.QHistStatus,
			consts.QHistPercent,
			consts.QHistError,
			consts.QHistStartedAt,
			consts.QHistFinishedAt,
		).
		Values(
			rec.TaskID,
			rec.URL,
			rec.Title,
			rec.Directory,
			rec.Quality,
			string(rec.Status),
			rec.Percent,
			rec.Error,
			nullTime(rec.StartedAt),
			nullTime(rec.FinishedAt),
		).
		RunWith(hs.DB)

	res, err := query.ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert history for %q: %w", rec.URL, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		logging.D(2, "Inserted history row %d for %q", id, rec.URL)
	}
	return nil
}

// Latest returns up to limit records, newest first. Zero or negative means all.
func (hs *HistoryStore) Latest(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	query := hs.selectHistory()
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return scanHistory(ctx, query)
}

// ForURL returns every record for url, newest first.
func (hs *HistoryStore) ForURL(ctx context.Context, url string) ([]models.HistoryRecord, error) {
	if url == "" {
		return nil, errors.New("url is empty")
	}
	return scanHistory(ctx, hs.selectHistory().Where(squirrel.Eq{consts.QHistURL: url}))
}

func (hs *HistoryStore) selectHistory() squirrel.SelectBuilder {
	return squirrel.Select(
		consts.QHistID,
		consts.QHistTaskID,
		consts.QHistURL,
		consts.QHistTitle,
		consts.QHistDirectory,
		consts.QHistQuality,
		consts.QHistStatus,
		consts.QHistPercent,
		consts.QHistError,
		consts.QHistStartedAt,
		consts.QHistFinishedAt,
	).
		From(consts.DBHistory).
		OrderBy(consts.QHistID + " DESC").
		RunWith(hs.DB)
}

func scanHistory(ctx context.Context, query squirrel.SelectBuilder) ([]models.HistoryRecord, error) {
	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryRecord
	for rows.Next() {
		var (
			rec                         models.HistoryRecord
			status                      string
			title, dir, quality, errMsg sql.NullString
			started, finished           sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.URL, &title, &dir, &quality, &status, &rec.Percent, &errMsg, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Title, rec.Directory, rec.Quality, rec.Error = title.String, dir.String, quality.String, errMsg.String
		rec.Status = consts.TaskStatus(status)
		rec.StartedAt, rec.FinishedAt = started.Time, finished.Time
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return out, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
