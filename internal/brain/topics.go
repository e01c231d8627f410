package brain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/resensebox/Mindful-Libraries-sub000/common/llm"
	"github.com/resensebox/Mindful-Libraries-sub000/common/logger"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/metrics"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
	"github.com/resensebox/Mindful-Libraries-sub000/internal/vocabulary"
)

// MaxTopics caps a derivation, however many valid topics the model returns.
const MaxTopics = 10

// ErrEmptyDerivation means no topic in the reply survived vocabulary
// validation. Callers render a "no strong matches" message.
var ErrEmptyDerivation = errors.New("no vocabulary topics derived")

const topicsPromptVersion = "v1"

type TopicDeriverOptions struct {
	Temperature float64
	MaxTokens   int

	// MaxAttempts includes the first call. Zero means 3.
	MaxAttempts int

	// Backoff is the first retry delay, doubled per attempt. Zero means 1s.
	Backoff time.Duration
}

// TopicDeriver asks the LLM to classify a person into vocabulary topics.
type TopicDeriver struct {
	llm   llm.Client
	vocab *vocabulary.Vocabulary
	opts  TopicDeriverOptions
}

func NewTopicDeriver(client llm.Client, vocab *vocabulary.Vocabulary, opts TopicDeriverOptions) *TopicDeriver {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 256
	}
	return &TopicDeriver{llm: client, vocab: vocab, opts: opts}
}

// Derive returns up to MaxTopics vocabulary topics in the model's order.
func (d *TopicDeriver) Derive(ctx context.Context, facts model.UserFacts) ([]string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "mindful.brain.topics"})
	sc := logger.StartSpan(ctx, "brain.derive_topics")
	defer sc.End()
	ctx = sc.Context()

	start := time.Now()
	topics, err := d.derive(ctx, facts)

	outcome := "ok"
	switch {
	case errors.Is(err, ErrEmptyDerivation):
		outcome = "empty"
	case err != nil:
		outcome = "error"
		sc.RecordError(err)
	}
	metrics.TopicDerivationDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	metrics.DerivedTopics.Observe(float64(len(topics)))
	sc.SetInt("topics.count", len(topics))

	return topics, err
}

func (d *TopicDeriver) derive(ctx context.Context, facts model.UserFacts) ([]string, error) {
	req := llm.Request{
		SystemPrompt: d.systemPrompt(),
		UserPrompt:   buildUserPrompt(facts),
		MaxTokens:    d.opts.MaxTokens,
		Temperature:  llm.Temp(d.opts.Temperature),
	}

	var resp *llm.Response
	var err error
	for attempt := 0; attempt < d.opts.MaxAttempts; attempt++ {
		resp, err = d.llm.Complete(ctx, req)
		if err == nil {
			break
		}
		if !llm.IsRetryable(ctx, err) || attempt == d.opts.MaxAttempts-1 {
			break
		}

		delay := d.opts.Backoff << attempt
		slog.WarnContext(ctx, "topic derivation retry",
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("topic derivation: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("topic derivation: %w", err)
	}

	topics := ParseTopics(resp.Content, d.vocab, MaxTopics)

	slog.InfoContext(ctx, "topics derived",
		"model", d.llm.Model(),
		"prompt_version", topicsPromptVersion,
		"topic_count", len(topics),
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens)

	if len(topics) == 0 {
		slog.WarnContext(ctx, "llm reply had no vocabulary topics",
			"reply", logger.Truncate(resp.Content, 200))
		return nil, ErrEmptyDerivation
	}
	return topics, nil
}

// ParseTopics keeps the comma-separated tokens of reply that are in vocab,
// normalized, in first-occurrence order, at most limit of them.
func ParseTopics(reply string, vocab *vocabulary.Vocabulary, limit int) []string {
	var topics []string
	seen := make(map[string]struct{})

	for _, tok := range strings.Split(reply, ",") {
		topic := model.NormalizeTag(strings.Trim(tok, " \t\r\n\"'`.*"))
		if topic == "" || !vocab.Contains(topic) {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
		if len(topics) == limit {
			break
		}
	}
	return topics
}

func (d *TopicDeriver) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString(topicsSystemPrompt)
	sb.WriteString("\n\n## Topics\n\n")
	sb.WriteString(strings.Join(d.vocab.Topics(), ", "))
	return sb.String()
}

func buildUserPrompt(facts model.UserFacts) string {
	facts = facts.Normalized()

	var sb strings.Builder
	writeField := func(label, value string) {
		if value == "" {
			value = "(not given)"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, value)
	}
	writeField("Past jobs", facts.Jobs)
	writeField("Hobbies", facts.Hobbies)
	writeField("Favorite decade", facts.Decade)
	return sb.String()
}

const topicsSystemPrompt = `You help activity staff pick reading material for older adults.

Given a person's past jobs, hobbies and favorite decade, pick the 10 topics from the list below that best fit their life and interests.

## Rules

- Use only topics from the list, spelled exactly as written
- Reply with a single line of 10 topics separated by commas
- No numbering, explanations or extra text`
