package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteSink writes to a local database file. The default sink.
type SQLiteSink struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLite opens (and creates) the database at path. ":memory:" is
// accepted for tests.
func OpenSQLite(path string) (*SQLiteSink, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &SQLiteSink{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS submission_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submission_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			name TEXT NOT NULL,
			jobs TEXT NOT NULL DEFAULT '',
			hobbies TEXT NOT NULL DEFAULT '',
			decade TEXT NOT NULL DEFAULT '',
			topics TEXT NOT NULL DEFAULT ''
		)`)
	return err
}

func (s *SQLiteSink) Append(ctx context.Context, e Entry) error {
	row := e.Row()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submission_log (submission_id, created_at, name, jobs, hobbies, decade, topics)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.submissionID(), row[0], row[1], row[2], row[3], row[4], row[5])
	if err != nil {
		return fmt.Errorf("insert submission log: %w", err)
	}
	return nil
}

// Rows returns all logged rows in insertion order, in Entry.Row form.
func (s *SQLiteSink) Rows(ctx context.Context) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT created_at, name, jobs, hobbies, decade, topics
		FROM submission_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query submission log: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		r := make([]string, 6)
		if err := rows.Scan(&r[0], &r[1], &r[2], &r[3], &r[4], &r[5]); err != nil {
			return nil, fmt.Errorf("scan submission log: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
