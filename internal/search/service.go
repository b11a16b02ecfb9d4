// Package search finds approved posts for a query, semantically when the
// embedding pipeline is healthy and by keyword scan otherwise.
package search

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/logger"
	"github.com/hemoconnect/hemoconnect/internal/metrics"
)

// keywordScanLimit bounds the approved-post scan on the fallback path.
const keywordScanLimit = 500

// Config holds search policy settings.
type Config struct {
	MinSimilarity float64
	MaxResults    int
}

// Service implements post search.
type Service struct {
	posts     postRepo
	inference embedder
	cfg       Config
}

// New creates a search service.
func New(posts postRepo, inference embedder, cfg Config) *Service {
	return &Service{
		posts:     posts,
		inference: inference,
		cfg:       cfg,
	}
}

// Search returns matching approved posts, most relevant first, along
// with the method that produced them.
func (s *Service) Search(ctx context.Context, query string) ([]domain.SearchResult, domain.SearchMethod, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, "", domain.ErrEmptyQuery
	}

	log := logger.FromContext(ctx)

	if vec := s.inference.Embed(ctx, query); vec != nil {
		results, err := s.semantic(ctx, vec)
		if err == nil && len(results) > 0 {
			metrics.SearchRequestsTotal.WithLabelValues(string(domain.SearchSemantic)).Inc()
			return results, domain.SearchSemantic, nil
		}
		if err != nil {
			log.Warn("semantic search degraded to keyword",
				zap.String("query", query),
				zap.Error(err))
		}
	}

	results, err := s.keyword(ctx, query)
	if err != nil {
		return nil, "", err
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(domain.SearchKeyword)).Inc()
	return results, domain.SearchKeyword, nil
}

func (s *Service) semantic(ctx context.Context, vec []float32) ([]domain.SearchResult, error) {
	hits, err := s.posts.SearchSimilar(ctx, vec, s.cfg.MaxResults)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < s.cfg.MinSimilarity {
			continue
		}
		sim := hit.Similarity
		results = append(results, domain.SearchResult{
			Post:      hit.Post,
			Relevance: &sim,
			Method:    domain.SearchSemantic,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Relevance > *results[j].Relevance
	})
	return results, nil
}

// keyword matches the query as a case-insensitive substring of title or
// body. Relevance is not defined for this path.
func (s *Service) keyword(ctx context.Context, query string) ([]domain.SearchResult, error) {
	posts, err := s.posts.ListApproved(ctx, keywordScanLimit)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]domain.SearchResult, 0)
	for _, p := range posts {
		if !strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Body), needle) {
			continue
		}
		results = append(results, domain.SearchResult{
			Post:   p,
			Method: domain.SearchKeyword,
		})
		if len(results) >= s.cfg.MaxResults {
			break
		}
	}
	return results, nil
}
