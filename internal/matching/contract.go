package matching

import (
	"context"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/repository/profile"
)

// profileRepo is the consumer interface for profile persistence.
type profileRepo interface {
	Get(ctx context.Context, id string) (*domain.Profile, error)
	SearchSimilar(ctx context.Context, vec []float32, excludeID string, k int) ([]profile.Hit, error)
	ListEligible(ctx context.Context, excludeID string, limit int) ([]domain.Profile, error)
}

// embedder is the consumer interface for the inference client. A nil
// vector means embedding is unavailable.
type embedder interface {
	Embed(ctx context.Context, text string) []float32
}
