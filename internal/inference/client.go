// Package inference wraps the model providers with a fail-soft contract:
// every call either produces a result or degrades to a nil result after
// bounded retries. Callers never see provider errors.
package inference

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/metrics"
)

const (
	defaultMaxAttempts = 3

	maxClassifyChars = 500
)

// sleepFunc waits for the given duration or until the context is done.
type sleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Client is the resilient inference front. Providers may be nil when the
// corresponding credentials are absent; calls then degrade immediately.
type Client struct {
	embed EmbedProvider
	text  TextProvider

	maxAttempts int
	sleep       sleepFunc
	logger      *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts overrides the per-call attempt budget.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithSleep overrides the backoff sleeper. For tests.
func WithSleep(sleep sleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// New creates an inference client. Either provider may be nil.
func New(embed EmbedProvider, text TextProvider, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		embed:       embed,
		text:        text,
		maxAttempts: defaultMaxAttempts,
		sleep:       defaultSleep,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Embed returns the embedding for text, or nil when the provider is
// unconfigured, the text is blank, or all attempts failed.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	if c.embed == nil || isBlank(text) {
		return nil
	}

	text = domain.Truncate(text, domain.MaxEmbeddingChars)

	vec, ok := retry(ctx, c, "embed", func(ctx context.Context) ([]float32, error) {
		return c.embed.Embed(ctx, text)
	})
	if !ok {
		return nil
	}
	return vec
}

// ClassifyToxicity scores text for toxicity. The verdict is toxic only
// when the model's "toxic" label exceeds threshold; other labels
// (including complement labels like "non-toxic") never flag. Returns nil
// when moderation is unavailable.
func (c *Client) ClassifyToxicity(ctx context.Context, text string, threshold float64) *domain.ModerationVerdict {
	if c.text == nil || isBlank(text) {
		return nil
	}

	text = domain.Truncate(text, maxClassifyChars)

	scores, ok := retry(ctx, c, "toxicity", func(ctx context.Context) ([]domain.LabelScore, error) {
		return c.text.ClassifyText(ctx, text)
	})
	if !ok {
		return nil
	}

	verdict := &domain.ModerationVerdict{Labels: scores}
	for _, s := range scores {
		if strings.EqualFold(s.Label, "toxic") && s.Score > threshold {
			verdict.IsToxic = true
			break
		}
	}
	return verdict
}

// ClassifyTopics scores text against the candidate labels, sorted by
// descending score. Returns nil when classification is unavailable.
func (c *Client) ClassifyTopics(ctx context.Context, text string, labels []string) []domain.LabelScore {
	if c.text == nil || isBlank(text) || len(labels) == 0 {
		return nil
	}

	text = domain.Truncate(text, maxClassifyChars)

	scores, ok := retry(ctx, c, "topics", func(ctx context.Context) ([]domain.LabelScore, error) {
		return c.text.ClassifyZeroShot(ctx, text, labels)
	})
	if !ok {
		return nil
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Summarize returns an abstractive summary, or "" when summarization is
// unavailable.
func (c *Client) Summarize(ctx context.Context, text string) string {
	if c.text == nil || isBlank(text) {
		return ""
	}

	text = domain.Truncate(text, domain.MaxSummaryInputChars)

	summary, ok := retry(ctx, c, "summarize", func(ctx context.Context) (string, error) {
		return c.text.Summarize(ctx, text)
	})
	if !ok {
		return ""
	}
	return summary
}

// retry runs op up to c.maxAttempts times with exponential backoff on
// transient failures. Terminal failures stop immediately. The second
// return reports whether a result was obtained.
func retry[T any](ctx context.Context, c *Client, operation string, op func(ctx context.Context) (T, error)) (T, bool) {
	var zero T

	start := time.Now()
	defer func() {
		metrics.InferenceRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			metrics.InferenceRequestsTotal.WithLabelValues(operation, "success").Inc()
			return result, true
		}

		if !errors.Is(err, domain.ErrInferenceTransient) {
			metrics.InferenceRequestsTotal.WithLabelValues(operation, "error").Inc()
			c.logger.Warn("inference degraded",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return zero, false
		}

		if attempt == c.maxAttempts {
			metrics.InferenceRequestsTotal.WithLabelValues(operation, "exhausted").Inc()
			c.logger.Warn("inference retries exhausted",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return zero, false
		}

		metrics.InferenceRetriesTotal.WithLabelValues(operation).Inc()
		backoff := time.Duration(1<<(attempt-1)) * time.Second
		if c.sleep(ctx, backoff) != nil {
			metrics.InferenceRequestsTotal.WithLabelValues(operation, "canceled").Inc()
			return zero, false
		}
	}

	return zero, false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
