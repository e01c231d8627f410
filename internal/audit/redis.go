package audit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends entries to a stream for downstream consumers.
type RedisSink struct {
	client redis.UniversalClient
	stream string
}

func NewRedisSink(client redis.UniversalClient, stream string) *RedisSink {
	return &RedisSink{client: client, stream: stream}
}

func (s *RedisSink) Append(ctx context.Context, e Entry) error {
	row := e.Row()
	fields := map[string]any{
		"submission_id": e.submissionID(),
		"timestamp":     row[0],
		"name":          row[1],
		"jobs":          row[2],
		"hobbies":       row[3],
		"decade":        row[4],
		"topics":        row[5],
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("append submission to stream: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
