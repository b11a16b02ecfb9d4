package search

import (
	"context"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/repository/post"
)

// postRepo is the consumer interface for post persistence.
type postRepo interface {
	SearchSimilar(ctx context.Context, vec []float32, k int) ([]post.Hit, error)
	ListApproved(ctx context.Context, limit int) ([]domain.Post, error)
}

// embedder is the consumer interface for the inference client. A nil
// vector means embedding is unavailable.
type embedder interface {
	Embed(ctx context.Context, text string) []float32
}
