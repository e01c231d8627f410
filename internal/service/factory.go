package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resensebox/Mindful-Libraries-sub000/common/llm"
	"github.com/resensebox/Mindful-Libraries-sub000/core/config"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/audit"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/brain"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/catalog"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"
)

type Services struct {
	catalog *catalog.Store
	deriver TopicDeriver
	sink    audit.Sink
	vocab   *vocabulary.Vocabulary
	opts    RecommendationOptions
}

func NewServices(catalogStore *catalog.Store, deriver TopicDeriver, sink audit.Sink, vocab *vocabulary.Vocabulary, opts RecommendationOptions) *Services {
	return &Services{
		catalog: catalogStore,
		deriver: deriver,
		sink:    sink,
		vocab:   vocab,
		opts:    opts,
	}
}

func (s *Services) Recommendations() RecommendationService {
	return NewRecommendationService(s.catalog, s.deriver, s.sink, s.opts)
}

func (s *Services) Catalog() *catalog.Store {
	return s.catalog
}

func (s *Services) Vocabulary() *vocabulary.Vocabulary {
	return s.vocab
}

// Build wires the production dependencies from cfg. The returned cleanup
// closes the audit sink and any database pools; it is never nil.
func Build(ctx context.Context, cfg config.Config) (*Services, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	source, closeSource, err := catalog.NewSource(ctx, cfg.Catalog, cfg.DB)
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating catalog source: %w", err)
	}
	closers = append(closers, closeSource)
	store := catalog.NewStore(source, cfg.Catalog.TTL, cfg.Catalog.Timeout)

	client, err := llm.New(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating llm client: %w", err)
	}
	client = llm.WithBreaker(client, llm.BreakerConfig{Name: "llm-" + cfg.LLM.Provider})

	vocab := vocabulary.Default()
	deriver := brain.NewTopicDeriver(client, vocab, brain.TopicDeriverOptions{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	sink, err := audit.Open(ctx, cfg.Audit, cfg.DB)
	if err != nil {
		return nil, cleanup, fmt.Errorf("opening audit sink: %w", err)
	}
	closers = append(closers, func() {
		if err := sink.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close audit sink", "error", err)
		}
	})

	services := NewServices(store, deriver, sink, vocab, RecommendationOptions{
		TopK:         cfg.TopK,
		LLMTimeout:   cfg.LLM.Timeout,
		AuditTimeout: cfg.Audit.Timeout,
	})
	return services, cleanup, nil
}
