package session

import (
	"maps"
	"sync"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// Aggregator tallies how often each book title was recommended within one
// session. It is never persisted or shared.
type Aggregator struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewAggregator() *Aggregator {
	return &Aggregator{counts: make(map[string]int)}
}

// Record adds one per book recommendation; other types are ignored.
func (a *Aggregator) Record(recs []model.Recommendation) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range recs {
		if r.Item.IsBook() {
			a.counts[r.Item.Title]++
		}
	}
}

// Snapshot returns a copy of the current tallies.
func (a *Aggregator) Snapshot() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return maps.Clone(a.counts)
}
