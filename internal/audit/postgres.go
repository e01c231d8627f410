package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of core/db.DB the postgres sink needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createSubmissionLog = `
CREATE TABLE IF NOT EXISTS submission_log (
	id BIGSERIAL PRIMARY KEY,
	submission_id BIGINT NOT NULL,
	created_at TEXT NOT NULL,
	name TEXT NOT NULL,
	jobs TEXT NOT NULL DEFAULT '',
	hobbies TEXT NOT NULL DEFAULT '',
	decade TEXT NOT NULL DEFAULT '',
	topics TEXT NOT NULL DEFAULT ''
)`

const insertSubmissionLog = `
INSERT INTO submission_log (submission_id, created_at, name, jobs, hobbies, decade, topics)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

type PostgresSink struct {
	db      Execer
	closeFn func()
}

// NewPostgresSink ensures the table exists. closeFn may be nil.
func NewPostgresSink(ctx context.Context, db Execer, closeFn func()) (*PostgresSink, error) {
	if _, err := db.Exec(ctx, createSubmissionLog); err != nil {
		return nil, fmt.Errorf("creating submission_log: %w", err)
	}
	return &PostgresSink{db: db, closeFn: closeFn}, nil
}

func (s *PostgresSink) Append(ctx context.Context, e Entry) error {
	row := e.Row()
	if _, err := s.db.Exec(ctx, insertSubmissionLog,
		e.SubmissionID, row[0], row[1], row[2], row[3], row[4], row[5]); err != nil {
		return fmt.Errorf("insert submission log: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}
