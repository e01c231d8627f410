// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts form/API submissions.
	// Labels:
	//   - action: "generate", "reroll"
	//   - outcome: "ok", "no_matches", "invalid_input", "catalog_unavailable", "error"
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_submissions_total",
			Help: "Total number of recommendation submissions by outcome",
		},
		[]string{"action", "outcome"},
	)

	// TopicDerivationDuration measures the LLM topic derivation, retries included.
	TopicDerivationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mindful_topic_derivation_duration_seconds",
			Help:    "Duration of LLM topic derivation in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"outcome"},
	)

	// DerivedTopics observes how many in-vocabulary topics survive validation.
	DerivedTopics = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mindful_derived_topics",
			Help:    "Number of vocabulary topics kept from an LLM reply",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 10},
		},
	)

	// CatalogRefreshTotal counts catalog loads.
	// Labels:
	//   - outcome: "success", "stale", "unavailable"
	CatalogRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_catalog_refresh_total",
			Help: "Total number of catalog refresh attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CatalogItems is the size of the current catalog snapshot.
	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mindful_catalog_items",
			Help: "Number of items in the current catalog snapshot",
		},
	)

	// SideEffectFailuresTotal counts audit and report failures that were
	// swallowed so the response could succeed.
	SideEffectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mindful_side_effect_failures_total",
			Help: "Total number of failed side effects (audit log, pdf)",
		},
		[]string{"kind"},
	)

	// ActiveSessions is the number of sessions held by the registry.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mindful_active_sessions",
			Help: "Number of live browsing sessions",
		},
	)
)
