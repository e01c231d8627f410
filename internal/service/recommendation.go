package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/resensebox/Mindful-Libraries-sub000/common/id"
	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/audit"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/brain"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/metrics"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/ranking"
)

const (
	ActionGenerate = "generate"
	ActionReroll   = "reroll"
)

type TopicDeriver interface {
	Derive(ctx context.Context, facts model.UserFacts) ([]string, error)
}

// BookCounter is the session-scoped tally of recommended books.
type BookCounter interface {
	Record(recs []model.Recommendation)
	Snapshot() map[string]int
}

type RecommendParams struct {
	Facts   model.UserFacts
	Action  string
	Counter BookCounter
}

type RecommendationService interface {
	// Recommend runs one submission end to end. It fails only for invalid
	// input or an unavailable catalog; LLM trouble yields a no_matches bundle.
	Recommend(ctx context.Context, params RecommendParams) (*model.Bundle, error)
}

type RecommendationOptions struct {
	TopK         int
	LLMTimeout   time.Duration
	AuditTimeout time.Duration
}

type recommendationService struct {
	catalog catalog.Reader
	deriver TopicDeriver
	audit   audit.Sink
	opts    RecommendationOptions
	now     func() time.Time
}

func NewRecommendationService(catalogReader catalog.Reader, deriver TopicDeriver, sink audit.Sink, opts RecommendationOptions) RecommendationService {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &recommendationService{
		catalog: catalogReader,
		deriver: deriver,
		audit:   sink,
		opts:    opts,
		now:     time.Now,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, params RecommendParams) (*model.Bundle, error) {
	action := params.Action
	if action != ActionReroll {
		action = ActionGenerate
	}

	facts := params.Facts.Normalized()
	if err := facts.Validate(); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(action, "invalid_input").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	submissionID := id.New()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SubmissionID: &submissionID,
		Component:    "mindful.service.recommendation",
	})
	sc := logger.StartSpan(ctx, "service.recommend")
	defer sc.End()
	ctx = sc.Context()

	// One snapshot for the whole submission, even if a refresh lands meanwhile.
	snap, err := s.catalog.Get(ctx)
	if err != nil {
		sc.RecordError(err)
		metrics.SubmissionsTotal.WithLabelValues(action, "catalog_unavailable").Inc()
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	bundle := &model.Bundle{
		SubmissionID: submissionID,
		Facts:        facts,
		Status:       model.BundleStatusNoMatches,
		CreatedAt:    s.now(),
	}

	topics, err := s.deriveTopics(ctx, facts)
	if err == nil {
		bundle.Topics = topics
		recs := ranking.Rank(topics, snap.Items, s.opts.TopK)
		if len(recs) > 0 {
			bundle.Recommendations = recs
			bundle.Status = model.BundleStatusOK
			if params.Counter != nil {
				params.Counter.Record(recs)
			}
		}
	}

	if params.Counter != nil {
		bundle.BookCounts = params.Counter.Snapshot()
	} else {
		bundle.BookCounts = map[string]int{}
	}

	s.appendAudit(ctx, bundle)

	metrics.SubmissionsTotal.WithLabelValues(action, string(bundle.Status)).Inc()
	slog.InfoContext(ctx, "recommendation submission completed",
		"action", action,
		"status", bundle.Status,
		"catalog_version", snap.Version,
		"topic_count", len(bundle.Topics),
		"recommendation_count", len(bundle.Recommendations))

	return bundle, nil
}

// deriveTopics returns nil topics with an error for every soft failure.
func (s *recommendationService) deriveTopics(ctx context.Context, facts model.UserFacts) ([]string, error) {
	dctx := ctx
	if s.opts.LLMTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, s.opts.LLMTimeout)
		defer cancel()
	}

	topics, err := s.deriver.Derive(dctx, facts)
	switch {
	case err == nil:
		return topics, nil
	case errors.Is(err, brain.ErrEmptyDerivation):
		slog.InfoContext(ctx, "no vocabulary topics derived")
	case errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %w", ErrUpstreamTimeout, err)
		slog.WarnContext(ctx, "topic derivation timed out", "error", err, "timeout", s.opts.LLMTimeout.String())
	default:
		slog.WarnContext(ctx, "topic derivation failed", "error", err)
	}
	return nil, err
}

// appendAudit never fails the submission.
func (s *recommendationService) appendAudit(ctx context.Context, bundle *model.Bundle) {
	actx := context.WithoutCancel(ctx)
	if s.opts.AuditTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(actx, s.opts.AuditTimeout)
		defer cancel()
	}

	entry := audit.Entry{
		SubmissionID: bundle.SubmissionID,
		Timestamp:    bundle.CreatedAt,
		Facts:        bundle.Facts,
		Topics:       bundle.Topics,
	}
	if err := s.audit.Append(actx, entry); err != nil {
		metrics.SideEffectFailuresTotal.WithLabelValues("audit").Inc()
		slog.WarnContext(ctx, "failed to append audit log entry", "error", err)
	}
}
