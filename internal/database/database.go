// Package database sets up/opens the program database.
package database

import (
	"database/sql"
	"fmt"

	"tubeplus/internal/utils/logging"

	// Package sqlite3 provides interface to SQLite3 databases.
	_ "github.com/mattn/go-sqlite3"
)

const (
	dbDriver = "sqlite3"
)

// Database holds the history database handle.
type Database struct {
	DB *sql.DB
}

// Open opens (creating if needed) the database at path and makes sure the
// tables exist.
func Open(path string) (d *Database, err error) {
	d = new(Database)
	d.DB, err = sql.Open(dbDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at path %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			d.DB.Close()
		}
	}()

	pragmas := []struct{ stmt, what string }{
		{`PRAGMA journal_mode = WAL;`, "enable WAL mode"},
		// Allow SQLite to wait for locks (in milliseconds)
		{`PRAGMA busy_timeout = 5000;`, "set busy_timeout"},
		{`PRAGMA synchronous = NORMAL;`, "set synchronous mode"},
	}
	for _, p := range pragmas {
		if _, err = d.DB.Exec(p.stmt); err != nil {
			return nil, fmt.Errorf("failed to %s: %w", p.what, err)
		}
	}

	if err = d.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return d, nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.DB.Close()
}

// initTables initializes the SQL tables.
func (d *Database) initTables() (err error) {
	tx, err := d.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("Panic rollback failed for table creation: %v", rbErr)
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.E("transaction rollback failed after original error %v: %v", err, rbErr)
			}
		}
	}()

	if err = initHistoryTable(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func initHistoryTable(tx *sql.Tx) error {
	query := `
    CREATE TABLE IF NOT EXISTS history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        task_id TEXT NOT NULL,
        url TEXT NOT NULL,
        title TEXT,
        directory TEXT,
        quality TEXT,
        status TEXT NOT NULL CHECK(status IN ('completed', 'failed', 'cancelled')),
        percent REAL NOT NULL DEFAULT 0,
        error TEXT,
        started_at TIMESTAMP,
        finished_at TIMESTAMP,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    CREATE INDEX IF NOT EXISTS idx_history_finished ON history(finished_at);
    CREATE INDEX IF NOT EXISTS idx_history_url ON history(url);
    `
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}
