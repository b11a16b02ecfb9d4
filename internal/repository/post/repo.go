// Package post persists community posts as JSON documents with a vector
// index for semantic search.
package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/db/redis"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	keyPrefix = "hemo:post:"
	indexName = "hemo:posts:idx"
)

// store is the consumer interface for posts (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements post persistence over the JSON store.
type Repo struct {
	store store
}

// New creates a post repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Hit is a post returned from a similarity query.
type Hit struct {
	Post       domain.Post
	Similarity float64
}

// Save creates or replaces a post document.
func (r *Repo) Save(ctx context.Context, p *domain.Post) error {
	data, err := json.Marshal(buildDoc(p))
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	if err := r.store.JSONSet(ctx, postKey(p.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", postKey(p.ID), err)
	}
	return nil
}

// Get returns a post by ID.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Post, error) {
	raw, err := r.store.JSONGet(ctx, postKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", postKey(id), err)
	}
	return parseDoc(raw)
}

// GetMulti returns the posts for the given IDs, skipping missing ones.
// Order follows the input IDs.
func (r *Repo) GetMulti(ctx context.Context, ids []string) ([]domain.Post, error) {
	posts := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrPostNotFound) {
				continue
			}
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

// SetEmbedding updates only the embedding field of a stored post.
func (r *Repo) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	if err := r.store.JSONSet(ctx, postKey(id), "$.embedding", data); err != nil {
		return fmt.Errorf("json.set embedding %s: %w", postKey(id), err)
	}
	return nil
}

// SetAutoTags updates the machine-assigned tags of a stored post.
func (r *Repo) SetAutoTags(ctx context.Context, id string, tags []string) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal auto tags: %w", err)
	}
	if err := r.store.JSONSet(ctx, postKey(id), "$.auto_tags", data); err != nil {
		return fmt.Errorf("json.set auto_tags %s: %w", postKey(id), err)
	}
	return nil
}

// SetSummary updates the thread summary and its timestamp.
func (r *Repo) SetSummary(ctx context.Context, id, summary string, updatedAt time.Time) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := r.store.JSONSet(ctx, postKey(id), "$.summary", data); err != nil {
		return fmt.Errorf("json.set summary %s: %w", postKey(id), err)
	}

	ts, err := json.Marshal(updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("marshal summary timestamp: %w", err)
	}
	if err := r.store.JSONSet(ctx, postKey(id), "$.summary_updated_at", ts); err != nil {
		return fmt.Errorf("json.set summary_updated_at %s: %w", postKey(id), err)
	}
	return nil
}

// SearchSimilar runs a KNN query over approved posts.
func (r *Repo) SearchSimilar(ctx context.Context, vec []float32, k int) ([]Hit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vec,
		Filter:       approvedFilter,
		K:            k,
		ReturnFields: []string{"$"},
	}

	result, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn posts: %w", err)
	}

	hits := make([]Hit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		p, err := parseDoc([]byte(entry.Fields["$"]))
		if err != nil {
			continue
		}
		hits = append(hits, Hit{Post: *p, Similarity: entry.Score})
	}
	return hits, nil
}

// ListApproved returns approved posts for keyword scanning.
func (r *Repo) ListApproved(ctx context.Context, limit int) ([]domain.Post, error) {
	result, err := r.store.SearchList(ctx, indexName, approvedFilter, 0, limit, []string{"$"})
	if err != nil {
		return nil, fmt.Errorf("list approved posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(result.Entries))
	for _, entry := range result.Entries {
		p, err := parseDoc([]byte(entry.Fields["$"]))
		if err != nil {
			continue
		}
		posts = append(posts, *p)
	}
	return posts, nil
}

// CountApprovedByAuthor returns how many approved posts the author has.
func (r *Repo) CountApprovedByAuthor(ctx context.Context, authorID string) (int, error) {
	query := approvedFilter + " @author:{" + redis.EscapeTag(authorID) + "}"
	n, err := r.store.SearchCount(ctx, indexName, query)
	if err != nil {
		return 0, fmt.Errorf("count approved by author: %w", err)
	}
	return n, nil
}

const approvedFilter = "@status:{approved}"

func postKey(id string) string {
	return keyPrefix + id
}

func parseDoc(raw []byte) (*domain.Post, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []postDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("unmarshal post: %w", err)
		}
		if len(docs) == 0 {
			return nil, domain.ErrPostNotFound
		}
		return docs[0].toDomain(), nil
	}

	var doc postDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal post: %w", err)
	}
	return doc.toDomain(), nil
}
