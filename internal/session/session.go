// Package session keeps per-browser state: the book counter, the last
// result bundle for PDF download, and a submission rate limiter.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/metrics"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

type Session struct {
	ID string

	books   *Aggregator
	limiter *rate.Limiter

	mu         sync.Mutex
	lastBundle *model.Bundle
	lastSeen   time.Time
}

// Record tallies book recommendations.
func (s *Session) Record(recs []model.Recommendation) {
	s.books.Record(recs)
}

func (s *Session) Snapshot() map[string]int {
	return s.books.Snapshot()
}

// Allow reports whether another submission fits the rate limit.
func (s *Session) Allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

func (s *Session) SetLastBundle(b *model.Bundle) {
	s.mu.Lock()
	s.lastBundle = b
	s.mu.Unlock()
}

// LastBundle returns the most recent bundle, or nil.
func (s *Session) LastBundle() *model.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBundle
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientIdleTimeout drops per-client limiters that have fully refilled.
const clientIdleTimeout = 10 * time.Minute

type RegistryOptions struct {
	// IdleTimeout evicts sessions not seen for this long. Zero keeps them
	// for the life of the process.
	IdleTimeout time.Duration

	// RatePerMinute limits submissions per session. Zero disables limiting.
	RatePerMinute int

	Now func() time.Time
}

// Registry owns all live sessions. Expired sessions are swept lazily on
// access; there is no background goroutine.
type Registry struct {
	opts RegistryOptions

	mu        sync.Mutex
	sessions  map[string]*Session
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
		clients:  make(map[string]*clientLimiter),
	}
}

// Get returns the session for id, creating a fresh one when id is empty,
// malformed or unknown. The returned session's ID may differ from id.
func (r *Registry) Get(id string) *Session {
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(now)

	if _, err := uuid.Parse(id); err == nil {
		if s, ok := r.sessions[id]; ok {
			if !r.expired(s, now) {
				s.touch(now)
				return s
			}
			r.removeLocked(id)
		}
	}

	return r.newSessionLocked(now)
}

// AllowClient applies the submission rate limit to a client key, usually
// the remote IP. It covers requests that arrive without a session cookie,
// where each request would otherwise get a fresh session and limiter.
func (r *Registry) AllowClient(key string) bool {
	if r.opts.RatePerMinute <= 0 {
		return true
	}
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked(now)

	cl, ok := r.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: r.newLimiter()}
		r.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) newSessionLocked(now time.Time) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		books:    NewAggregator(),
		lastSeen: now,
	}
	if r.opts.RatePerMinute > 0 {
		s.limiter = r.newLimiter()
	}
	r.sessions[s.ID] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	return s
}

func (r *Registry) newLimiter() *rate.Limiter {
	perSecond := rate.Limit(float64(r.opts.RatePerMinute) / 60)
	return rate.NewLimiter(perSecond, r.opts.RatePerMinute)
}

func (r *Registry) expired(s *Session, now time.Time) bool {
	return r.opts.IdleTimeout > 0 && s.idleSince(now) >= r.opts.IdleTimeout
}

func (r *Registry) removeLocked(id string) {
	delete(r.sessions, id)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
}

// sweepLocked runs at most once per minute.
func (r *Registry) sweepLocked(now time.Time) {
	if now.Sub(r.lastSweep) < time.Minute {
		return
	}
	r.lastSweep = now

	for key, cl := range r.clients {
		if now.Sub(cl.lastSeen) >= clientIdleTimeout {
			delete(r.clients, key)
		}
	}

	if r.opts.IdleTimeout <= 0 {
		return
	}

	removed := 0
	for id, s := range r.sessions {
		if r.expired(s, now) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
		slog.Debug("expired idle sessions", "removed", removed, "remaining", len(r.sessions))
	}
}
