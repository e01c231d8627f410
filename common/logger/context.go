package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log record written with a context that
// carries them. Handlers and the orchestrator enrich the request context once
// and all downstream slog calls pick the fields up.
type LogFields struct {
	SessionID    *string // browsing session (cookie value)
	SubmissionID *int64  // one Generate/Reroll submission
	Route        *string // gin route template, e.g. "/recommend"
	Component    string  // e.g. "mindful.catalog.store"
}

// WithLogFields merges fields into ctx. Newer non-nil/non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields attached to ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.SessionID != nil {
		result.SessionID = next.SessionID
	}
	if next.SubmissionID != nil {
		result.SubmissionID = next.SubmissionID
	}
	if next.Route != nil {
		result.Route = next.Route
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v, for inline LogFields literals.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes and appends "..." when it was cut.
// Used for logging LLM replies and user free text.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
