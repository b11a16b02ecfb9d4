package badges

import (
	"context"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

// badgeRepo is the consumer interface for badge persistence. Award must
// be conditional: only the call that created the award returns true.
type badgeRepo interface {
	Has(ctx context.Context, actorID string, badgeType domain.BadgeType) (bool, error)
	Award(ctx context.Context, award *domain.BadgeAward) (bool, error)
}

// notifier is the consumer interface for notification persistence.
type notifier interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// postCounter is the consumer interface for post statistics.
type postCounter interface {
	CountApprovedByAuthor(ctx context.Context, authorID string) (int, error)
}
