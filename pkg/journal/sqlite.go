// Package journal persists recorded changes to SQLite so they can be queried
// after an inspector session ends.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/grovetools/sigscope/pkg/history"
	"github.com/grovetools/sigscope/pkg/signal"
)

// Record is one persisted change.
type Record struct {
	ID        int64     `json:"id"`
	Session   string    `json:"session"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
}

// Journal is a SQLite-backed change log.
type Journal struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the journal at path. ":memory:" is accepted.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	j := &Journal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS changes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		path TEXT NOT NULL,
		old_value TEXT NOT NULL,
		new_value TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_changes_session ON changes(session);
	CREATE INDEX IF NOT EXISTS idx_changes_path ON changes(path);
	`
	_, err := j.db.Exec(schema)
	return err
}

// Append stores entries under session in a single transaction. Values are
// kept as their canonical JSON encoding.
func (j *Journal) Append(ctx context.Context, session string, entries []history.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO changes (session, timestamp, path, old_value, new_value) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx, session, e.Timestamp.UnixMilli(), e.Path,
			string(signal.Canonical(e.OldValue)), string(signal.Canonical(e.NewValue)))
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert change: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit changes: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first. A limit of zero or less
// returns everything.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Record, error) {
	return j.query(ctx, "", limit)
}

// Session returns the records of one session, newest first.
func (j *Journal) Session(ctx context.Context, session string, limit int) ([]Record, error) {
	return j.query(ctx, session, limit)
}

func (j *Journal) query(ctx context.Context, session string, limit int) ([]Record, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	q := "SELECT id, session, timestamp, path, old_value, new_value FROM changes"
	var args []any
	if session != "" {
		q += " WHERE session = ?"
		args = append(args, session)
	}
	q += " ORDER BY id DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var ts int64
		if err := rows.Scan(&r.ID, &r.Session, &ts, &r.Path, &r.OldValue, &r.NewValue); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		r.Timestamp = time.UnixMilli(ts)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
