// Package history persists ingested records to SQLite so demo and replay
// sessions survive restarts. It sits outside the analytics core's read
// path: the core only ever reads from the in-memory store.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/agentdash/agent-analytics/internal/record"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         TEXT PRIMARY KEY,
	ts         INTEGER NOT NULL,
	category   TEXT NOT NULL,
	numeric    TEXT NOT NULL,
	outcome    INTEGER,
	label      TEXT NOT NULL DEFAULT '',
	reasoning  TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_ts ON records(ts);
`

// Archive is an append-only SQLite store of records.
type Archive struct {
	db   *sql.DB
	path string
}

// Open creates or opens the archive database at path, creating parent
// directories as needed.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return &Archive{db: db, path: path}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.path
}

// SaveAll upserts records in one transaction.
func (a *Archive) SaveAll(ctx context.Context, records []record.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records
		(id, ts, category, numeric, outcome, label, reasoning, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ts = excluded.ts,
			category = excluded.category,
			numeric = excluded.numeric,
			outcome = excluded.outcome,
			label = excluded.label,
			reasoning = excluded.reasoning,
			tags = excluded.tags`)
	if err != nil {
		return fmt.Errorf("prepare archive upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, r := range records {
		numeric, err := json.Marshal(r.Numeric)
		if err != nil {
			return fmt.Errorf("marshal numeric for %s: %w", r.ID, err)
		}
		tags, err := json.Marshal(r.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", r.ID, err)
		}
		var outcome sql.NullInt64
		if r.Outcome != nil {
			outcome.Valid = true
			if *r.Outcome {
				outcome.Int64 = 1
			}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Timestamp.UnixNano(), r.Category, string(numeric),
			outcome, r.Label, r.Reasoning, string(tags), now,
		); err != nil {
			return fmt.Errorf("upsert record %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// LoadRecent returns up to limit records with the newest timestamps,
// re-sorted into ascending timestamp order for store insertion.
func (a *Archive) LoadRecent(ctx context.Context, limit int) ([]record.Record, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := a.db.QueryContext(ctx, `SELECT id, ts, category, numeric, outcome, label, reasoning, tags
		FROM (
			SELECT * FROM records ORDER BY ts DESC LIMIT ?
		) ORDER BY ts ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	var out []record.Record
	for rows.Next() {
		var (
			r       record.Record
			ts      int64
			numeric string
			outcome sql.NullInt64
			tags    string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Category, &numeric, &outcome, &r.Label, &r.Reasoning, &tags); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		if err := json.Unmarshal([]byte(numeric), &r.Numeric); err != nil {
			return nil, fmt.Errorf("unmarshal numeric for %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags for %s: %w", r.ID, err)
		}
		if outcome.Valid {
			v := outcome.Int64 == 1
			r.Outcome = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive rows: %w", err)
	}
	return out, nil
}

// Count returns the number of archived records.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count archive: %w", err)
	}
	return n, nil
}
