package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	// Pure-Go sqlite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "logs/unified_logs.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tool_logs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp      TEXT NOT NULL,
	level          TEXT NOT NULL,
	message        TEXT NOT NULL,
	tool           TEXT,
	correlation_id TEXT,
	status         TEXT,
	duration_ms    INTEGER,
	fields         TEXT
);
CREATE INDEX IF NOT EXISTS idx_tool_logs_correlation ON tool_logs (correlation_id);
`

// sqliteSink persists records to a sqlite database. database/sql serializes
// concurrent writers, so no extra locking is needed here.
type sqliteSink struct {
	db *sql.DB
}

func newSQLiteSink(path string) (*sqliteSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open log database: %w", err)
	}

	// A single connection sidesteps sqlite writer contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create log schema: %w", err)
	}

	return &sqliteSink{db: db}, nil
}

func (s *sqliteSink) Write(ctx context.Context, rec Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		fields = []byte(fmt.Sprintf("%q", fmt.Sprint(rec.Fields)))
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tool_logs (timestamp, level, message, tool, correlation_id, status, duration_ms, fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Time.Format("2006-01-02T15:04:05.000Z07:00"),
		rec.Level.String(),
		rec.Message,
		rec.Tool,
		rec.CorrelationID,
		rec.Status,
		rec.DurationMs,
		string(fields),
	)

	return err
}

func (s *sqliteSink) Close() error {
	return s.db.Close()
}
