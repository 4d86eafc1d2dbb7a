package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS raw_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	session_id TEXT NOT NULL DEFAULT '',
	customer_id TEXT NOT NULL DEFAULT '',
	question_number INTEGER NOT NULL,
	question_text TEXT NOT NULL,
	question_category TEXT NOT NULL DEFAULT '',
	analyzed_at TEXT NOT NULL,
	fields_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_raw_records_run ON raw_records(run_id);

CREATE TABLE IF NOT EXISTS aggregate_records (
	run_id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL DEFAULT '',
	brand_name TEXT NOT NULL,
	report_date TEXT NOT NULL,
	visibility_score REAL NOT NULL,
	record_json TEXT NOT NULL
);
`

// SQLiteStore persists records in a local SQLite database (WAL mode)
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteStore opens or creates the database at path
func NewSQLiteStore(path string, logger *log.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// SaveRaw inserts raw records, one transaction per batch
func (s *SQLiteStore) SaveRaw(ctx context.Context, records []RawRecord) (int, error) {
	return writeBatches(ctx, records, s.logger, s.insertBatch)
}

func (s *SQLiteStore) insertBatch(ctx context.Context, batch []RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range batch {
		fields, err := json.Marshal(r.Fields())
		if err != nil {
			return fmt.Errorf("marshal raw record: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO raw_records
			(run_id, session_id, customer_id, question_number, question_text, question_category, analyzed_at, fields_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.RunID, r.SessionID, r.CustomerID, r.QuestionNumber,
			r.QuestionText, r.QuestionCategory, r.AnalyzedAt, string(fields),
		)
		if err != nil {
			return fmt.Errorf("insert raw record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// SaveAggregate inserts or replaces the dashboard row for the run
func (s *SQLiteStore) SaveAggregate(ctx context.Context, record AggregateRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal aggregate record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO aggregate_records
		(run_id, session_id, brand_name, report_date, visibility_score, record_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.RunID, record.SessionID, record.BrandName, record.ReportDate,
		record.VisibilityScore, string(data),
	)
	if err != nil {
		return &WriteError{Unwritten: 1, Err: fmt.Errorf("insert aggregate record: %w", err)}
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
