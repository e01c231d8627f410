package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without contacting the provider while the
// breaker is open.
var ErrCircuitOpen = errors.New("llm circuit open")

type BreakerConfig struct {
	Name             string
	FailureThreshold uint32        // consecutive failures before opening
	OpenTimeout      time.Duration // how long to stay open before probing
}

type breakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[*Response]
}

// WithBreaker wraps inner so a run of provider failures fails fast instead of
// holding every submission for the full LLM timeout. Only outages count as
// failures: timeouts, rate limits, 5xx and network errors. Caller
// cancellations and 4xx replies do not.
func WithBreaker(inner Client, cfg BreakerConfig) Client {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return !isOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("llm circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &breakerClient{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[*Response](settings),
	}
}

func (b *breakerClient) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := b.cb.Execute(func() (*Response, error) {
		return b.inner.Complete(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return resp, err
}

func (b *breakerClient) Model() string {
	return b.inner.Model()
}

func isOutage(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	if status, ok := statusCode(err); ok {
		return status == 429 || status >= 500
	}
	return true
}
