package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/metrics"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// ErrCatalogUnavailable is returned when no snapshot could ever be loaded.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

const defaultRetryBackoff = 30 * time.Second

// Snapshot is an immutable view of the catalog. Items must not be modified;
// a refresh always installs a fresh Snapshot.
type Snapshot struct {
	Items    []model.CatalogItem
	LoadedAt time.Time
	Version  uint64
}

// Reader is what consumers of the catalog depend on.
type Reader interface {
	Get(ctx context.Context) (*Snapshot, error)
}

// Store caches the catalog for a TTL. Concurrent refreshes collapse into one
// fetch, and a failed refresh keeps serving the previous snapshot.
type Store struct {
	source  Source
	ttl     time.Duration
	timeout time.Duration
	backoff time.Duration
	now     func() time.Time

	current     atomic.Pointer[Snapshot]
	version     atomic.Uint64
	nextAttempt atomic.Int64
	group       singleflight.Group
}

type Option func(*Store)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRetryBackoff sets how long a stale snapshot is served after a failed
// refresh before the source is tried again.
func WithRetryBackoff(d time.Duration) Option {
	return func(s *Store) { s.backoff = d }
}

func NewStore(source Source, ttl, timeout time.Duration, opts ...Option) *Store {
	s := &Store{
		source:  source,
		ttl:     ttl,
		timeout: timeout,
		backoff: defaultRetryBackoff,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches and normalizes the whole catalog without touching the cache.
// Rows with a blank title are dropped and counted.
func (s *Store) Load(ctx context.Context) ([]model.CatalogItem, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rows, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog from %s source: %w", s.source.Name(), err)
	}

	items := make([]model.CatalogItem, 0, len(rows))
	var dropped []int
	for i, row := range rows {
		item, err := model.NewCatalogItem(row)
		if errors.Is(err, model.ErrBlankTitle) {
			// +2: one for the header, one for 1-based line numbers
			dropped = append(dropped, i+2)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		items = append(items, item)
	}

	if len(dropped) > 0 {
		slog.WarnContext(ctx, "dropped catalog rows without a title",
			"count", len(dropped),
			"lines", dropped)
	}

	return items, nil
}

// Get returns the current snapshot, refreshing it first when the TTL has
// elapsed. Callers keep the snapshot they got for the whole request.
func (s *Store) Get(ctx context.Context) (*Snapshot, error) {
	snap := s.current.Load()
	now := s.now()
	if snap != nil {
		if now.Sub(snap.LoadedAt) < s.ttl {
			return snap, nil
		}
		if now.UnixNano() < s.nextAttempt.Load() {
			return snap, nil
		}
	}

	// The shared fetch outlives any single caller that gives up.
	v, err, _ := s.group.Do("catalog", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Current returns the last loaded snapshot without refreshing, or nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

func (s *Store) refresh(ctx context.Context) (*Snapshot, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "mindful.catalog.store"})
	sc := logger.StartSpan(ctx, "catalog.refresh")
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	items, err := s.Load(ctx)
	if err != nil {
		sc.RecordError(err)
		s.nextAttempt.Store(s.now().Add(s.backoff).UnixNano())

		if prev := s.current.Load(); prev != nil {
			metrics.CatalogRefreshTotal.WithLabelValues("stale").Inc()
			slog.WarnContext(ctx, "catalog refresh failed, serving stale snapshot",
				"error", err,
				"snapshot_version", prev.Version,
				"snapshot_age", s.now().Sub(prev.LoadedAt).Round(time.Second).String(),
				"retry_in", s.backoff.String())
			return prev, nil
		}

		metrics.CatalogRefreshTotal.WithLabelValues("unavailable").Inc()
		slog.ErrorContext(ctx, "catalog refresh failed with no snapshot to fall back on", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	snap := &Snapshot{
		Items:    items,
		LoadedAt: s.now(),
		Version:  s.version.Add(1),
	}
	s.current.Store(snap)
	s.nextAttempt.Store(0)

	metrics.CatalogRefreshTotal.WithLabelValues("success").Inc()
	metrics.CatalogItems.Set(float64(len(items)))
	sc.SetInt("catalog.items", len(items))

	slog.InfoContext(ctx, "catalog refreshed",
		"source", s.source.Name(),
		"items", len(items),
		"version", snap.Version,
		"duration_ms", time.Since(start).Milliseconds())

	return snap, nil
}
