// Package audit appends one row per submission to an append-only log.
package audit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/resensebox/Mindful-Libraries-sub000/core/config"
	"github.com/resensebox/Mindful-Libraries-sub000/core/db"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// Entry is one submission. Row renders it in the column order of the
// original sheet: timestamp, name, jobs, hobbies, decade, topics.
type Entry struct {
	SubmissionID int64
	Timestamp    time.Time
	Facts        model.UserFacts
	Topics       []string
}

func (e Entry) Row() []string {
	return []string{
		e.Timestamp.Local().Format(time.RFC3339),
		e.Facts.Name,
		e.Facts.Jobs,
		e.Facts.Hobbies,
		e.Facts.Decade,
		strings.Join(e.Topics, ", "),
	}
}

func (e Entry) submissionID() string {
	return strconv.FormatInt(e.SubmissionID, 10)
}

type Sink interface {
	Append(ctx context.Context, e Entry) error
	Close() error
}

// NopSink discards entries. Used when AUDIT_SINK_URL is "none".
type NopSink struct{}

func (NopSink) Append(context.Context, Entry) error { return nil }
func (NopSink) Close() error                        { return nil }

// Open picks a sink from the scheme of cfg.SinkURL.
func Open(ctx context.Context, cfg config.AuditConfig, dbCfg db.Config) (Sink, error) {
	if !cfg.Enabled() {
		return NopSink{}, nil
	}

	scheme, rest, ok := strings.Cut(cfg.SinkURL, "://")
	if !ok {
		return nil, fmt.Errorf("audit sink url %q has no scheme", cfg.SinkURL)
	}

	switch strings.ToLower(scheme) {
	case "sqlite":
		sink, err := OpenSQLite(rest)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case "postgres", "postgresql":
		dbCfg.DSN = cfg.SinkURL
		database, err := db.New(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to audit database: %w", err)
		}
		sink, err := NewPostgresSink(ctx, database, database.Close)
		if err != nil {
			database.Close()
			return nil, err
		}
		return sink, nil
	case "redis", "rediss":
		opts, err := redis.ParseURL(cfg.SinkURL)
		if err != nil {
			return nil, fmt.Errorf("parsing audit redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("pinging audit redis: %w", err)
		}
		return NewRedisSink(client, cfg.RedisStream), nil
	default:
		return nil, fmt.Errorf("unsupported audit sink scheme %q", scheme)
	}
}
