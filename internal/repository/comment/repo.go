// Package comment persists post comments as JSON documents indexed by
// their parent post.
package comment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/db/redis"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	keyPrefix = "hemo:comment:"
	indexName = "hemo:comments:idx"

	// listCap bounds a single thread load. Summarization input is
	// truncated anyway, so deep threads lose nothing meaningful.
	listCap = 500
)

// store is the consumer interface for comments (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements comment persistence over the JSON store.
type Repo struct {
	store store
}

// New creates a comment repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save creates or replaces a comment document.
func (r *Repo) Save(ctx context.Context, c *domain.Comment) error {
	data, err := json.Marshal(buildDoc(c))
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}
	if err := r.store.JSONSet(ctx, commentKey(c.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", commentKey(c.ID), err)
	}
	return nil
}

// ListByPost returns the comments of a post in creation order.
func (r *Repo) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	query := postFilter(postID)
	result, err := r.store.SearchList(ctx, indexName, query, 0, listCap, []string{"$"})
	if err != nil {
		return nil, fmt.Errorf("list comments for %s: %w", postID, err)
	}

	comments := make([]domain.Comment, 0, len(result.Entries))
	for _, entry := range result.Entries {
		c, err := parseDoc([]byte(entry.Fields["$"]))
		if err != nil {
			continue
		}
		comments = append(comments, *c)
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// CountByPost returns the number of comments on a post.
func (r *Repo) CountByPost(ctx context.Context, postID string) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName, postFilter(postID))
	if err != nil {
		return 0, fmt.Errorf("count comments for %s: %w", postID, err)
	}
	return n, nil
}

func postFilter(postID string) string {
	return "@post:{" + redis.EscapeTag(postID) + "}"
}

func commentKey(id string) string {
	return keyPrefix + id
}

func parseDoc(raw []byte) (*domain.Comment, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []commentDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("unmarshal comment: %w", err)
		}
		if len(docs) == 0 {
			return nil, domain.ErrNotFound
		}
		return docs[0].toDomain(), nil
	}

	var doc commentDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal comment: %w", err)
	}
	return doc.toDomain(), nil
}
