package content

import (
	"context"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/ratelimit"
)

// postRepo is the consumer interface for post persistence.
type postRepo interface {
	Save(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	SetEmbedding(ctx context.Context, id string, vec []float32) error
	SetAutoTags(ctx context.Context, id string, tags []string) error
	SetSummary(ctx context.Context, id, summary string, updatedAt time.Time) error
}

// commentRepo is the consumer interface for comment persistence.
type commentRepo interface {
	Save(ctx context.Context, c *domain.Comment) error
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
	CountByPost(ctx context.Context, postID string) (int, error)
}

// notifier is the consumer interface for notification persistence.
type notifier interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// limiter throttles member actions.
type limiter interface {
	Check(actorID, action string) ratelimit.Decision
}

// inferenceClient is the consumer interface for the fail-soft model
// pipeline. Nil and empty results mean the feature is unavailable.
type inferenceClient interface {
	Embed(ctx context.Context, text string) []float32
	ClassifyToxicity(ctx context.Context, text string, threshold float64) *domain.ModerationVerdict
	ClassifyTopics(ctx context.Context, text string, labels []string) []domain.LabelScore
	Summarize(ctx context.Context, text string) string
}

// badgeEvaluator reacts to content events.
type badgeEvaluator interface {
	OnPostApproved(ctx context.Context, authorID string) error
}

// taskRunner schedules fire-and-forget background work.
type taskRunner interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}
