// Package notification persists in-app notifications as JSON documents.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/db/redis"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	keyPrefix = "hemo:notification:"
	indexName = "hemo:notifications:idx"
)

// store is the consumer interface for notifications (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements notification persistence over the JSON store.
type Repo struct {
	store store
}

// New creates a notification repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a notification.
func (r *Repo) Create(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(buildDoc(n))
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := r.store.JSONSet(ctx, keyPrefix+n.ID, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", keyPrefix+n.ID, err)
	}
	return nil
}

// ListByUser returns a member's notifications, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	query := "@user:{" + redis.EscapeTag(userID) + "}"
	result, err := r.store.SearchList(ctx, indexName, query, 0, limit, []string{"$"})
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", userID, err)
	}

	items := make([]domain.Notification, 0, len(result.Entries))
	for _, entry := range result.Entries {
		n, err := parseDoc([]byte(entry.Fields["$"]))
		if err != nil {
			continue
		}
		items = append(items, *n)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// IndexDefinition describes the FT index backing per-user lookups.
func IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{JSONPath: "$.user_id", Alias: "user", Type: db.IndexFieldTag},
			{JSONPath: "$.type", Alias: "type", Type: db.IndexFieldTag},
			{JSONPath: "$.created_at", Alias: "created_at", Type: db.IndexFieldNumeric},
		},
	}
}
