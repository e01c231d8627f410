package model

import "time"

// ScoredItem pairs a catalog item with its tag-overlap score.
type ScoredItem struct {
	Item  CatalogItem
	Score int
}

// Recommendation is a catalog item selected for presentation. Score is
// always positive.
type Recommendation struct {
	Item  CatalogItem
	Score int
}

type BundleStatus string

const (
	BundleStatusOK        BundleStatus = "ok"
	BundleStatusNoMatches BundleStatus = "no_matches"
)

// Bundle is the result of one submission.
type Bundle struct {
	SubmissionID    int64
	Facts           UserFacts
	Topics          []string
	Recommendations []Recommendation
	BookCounts      map[string]int
	Status          BundleStatus
	CreatedAt       time.Time
}

func (b *Bundle) HasMatches() bool {
	return b != nil && b.Status == BundleStatusOK && len(b.Recommendations) > 0
}
