package service

import "errors"

var (
	// ErrInvalidInput wraps a *model.ValidationError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamTimeout marks an LLM call that ran out of time. The
	// orchestrator degrades it to the no-matches path.
	ErrUpstreamTimeout = errors.New("upstream timeout")
)
