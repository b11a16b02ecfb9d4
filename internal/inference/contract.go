package inference

import (
	"context"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

// EmbedProvider computes embedding vectors for text.
type EmbedProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// TextProvider runs text-level inference: classification, zero-shot
// topic scoring and summarization.
type TextProvider interface {
	ClassifyText(ctx context.Context, text string) ([]domain.LabelScore, error)
	ClassifyZeroShot(ctx context.Context, text string, labels []string) ([]domain.LabelScore, error)
	Summarize(ctx context.Context, text string) (string, error)
}
