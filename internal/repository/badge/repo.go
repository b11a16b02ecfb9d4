// Package badge persists badge awards. Uniqueness per member and badge
// type is enforced at the storage level with a conditional write.
package badge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const keyPrefix = "hemo:badge:"

// store is the consumer interface for badge awards (ISP).
type store interface {
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements badge persistence over the KV store.
type Repo struct {
	store store
}

// New creates a badge repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Award records a badge for a member. Returns true only for the write
// that created the award; repeat calls are no-ops.
func (r *Repo) Award(ctx context.Context, award *domain.BadgeAward) (bool, error) {
	data, err := json.Marshal(award)
	if err != nil {
		return false, fmt.Errorf("marshal badge award: %w", err)
	}

	created, err := r.store.SetNX(ctx, badgeKey(award.ActorID, award.Type), data)
	if err != nil {
		return false, fmt.Errorf("award badge %s/%s: %w", award.ActorID, award.Type, err)
	}
	return created, nil
}

// Has reports whether the member already holds the badge.
func (r *Repo) Has(ctx context.Context, actorID string, badgeType domain.BadgeType) (bool, error) {
	exists, err := r.store.Exists(ctx, badgeKey(actorID, badgeType))
	if err != nil {
		return false, fmt.Errorf("check badge %s/%s: %w", actorID, badgeType, err)
	}
	return exists, nil
}

func badgeKey(actorID string, badgeType domain.BadgeType) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, actorID, badgeType)
}
