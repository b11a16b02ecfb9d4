// Package profile persists member profiles as JSON documents with a
// vector index for similarity matching.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/db/redis"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	keyPrefix = "hemo:profile:"
	indexName = "hemo:profiles:idx"
)

// store is the consumer interface for profiles (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements profile persistence over the JSON store.
type Repo struct {
	store store
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Hit is a profile returned from a similarity query.
type Hit struct {
	Profile    domain.Profile
	Similarity float64
}

// Save creates or replaces a profile document.
func (r *Repo) Save(ctx context.Context, p *domain.Profile) error {
	data, err := json.Marshal(buildDoc(p))
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := r.store.JSONSet(ctx, profileKey(p.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", profileKey(p.ID), err)
	}
	return nil
}

// Get returns a profile by ID.
func (r *Repo) Get(ctx context.Context, id string) (*domain.Profile, error) {
	raw, err := r.store.JSONGet(ctx, profileKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("json.get %s: %w", profileKey(id), err)
	}
	return parseDoc(raw)
}

// SetEmbedding updates only the embedding field of a stored profile.
func (r *Repo) SetEmbedding(ctx context.Context, id string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal embedding: %w", err)
	}
	if err := r.store.JSONSet(ctx, profileKey(id), "$.embedding", data); err != nil {
		return fmt.Errorf("json.set embedding %s: %w", profileKey(id), err)
	}
	return nil
}

// SearchSimilar runs a KNN query over eligible profiles, excluding the
// querying member. Results carry cosine similarity in [0,1].
func (r *Repo) SearchSimilar(ctx context.Context, vec []float32, excludeID string, k int) ([]Hit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName,
		Vector:       vec,
		Filter:       eligibleFilter + " -@id:{" + redis.EscapeTag(excludeID) + "}",
		K:            k,
		ReturnFields: []string{"$"},
	}

	result, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn profiles: %w", err)
	}

	hits := make([]Hit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		p, err := parseDoc([]byte(entry.Fields["$"]))
		if err != nil {
			continue
		}
		hits = append(hits, Hit{Profile: *p, Similarity: entry.Score})
	}
	return hits, nil
}

// ListEligible returns visible profiles with matching enabled, excluding
// the given member. Used when vector search is unavailable.
func (r *Repo) ListEligible(ctx context.Context, excludeID string, limit int) ([]domain.Profile, error) {
	query := eligibleFilter + " -@id:{" + redis.EscapeTag(excludeID) + "}"
	result, err := r.store.SearchList(ctx, indexName, query, 0, limit, []string{"$"})
	if err != nil {
		return nil, fmt.Errorf("list eligible profiles: %w", err)
	}

	profiles := make([]domain.Profile, 0, len(result.Entries))
	for _, entry := range result.Entries {
		p, err := parseDoc([]byte(entry.Fields["$"]))
		if err != nil {
			continue
		}
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

const eligibleFilter = "@visible:{true} @matching:{true}"

func profileKey(id string) string {
	return keyPrefix + id
}

// parseDoc unwraps the JSONPath array form returned by JSON.GET $.
func parseDoc(raw []byte) (*domain.Profile, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []profileDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
		if len(docs) == 0 {
			return nil, domain.ErrProfileNotFound
		}
		return docs[0].toDomain(), nil
	}

	var doc profileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return doc.toDomain(), nil
}
