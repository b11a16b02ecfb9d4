package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/repository/post"
)

type mockPostRepo struct {
	searchSimilarFn func(ctx context.Context, vec []float32, k int) ([]post.Hit, error)
	listApprovedFn  func(ctx context.Context, limit int) ([]domain.Post, error)
}

func (m *mockPostRepo) SearchSimilar(ctx context.Context, vec []float32, k int) ([]post.Hit, error) {
	if m.searchSimilarFn != nil {
		return m.searchSimilarFn(ctx, vec, k)
	}
	return nil, nil
}

func (m *mockPostRepo) ListApproved(ctx context.Context, limit int) ([]domain.Post, error) {
	if m.listApprovedFn != nil {
		return m.listApprovedFn(ctx, limit)
	}
	return nil, nil
}

type mockEmbedder struct {
	vec []float32
}

func (m *mockEmbedder) Embed(context.Context, string) []float32 { return m.vec }

func newService(repo *mockPostRepo, emb *mockEmbedder) *Service {
	return New(repo, emb, Config{MinSimilarity: 0.3, MaxResults: 20})
}

func approvedPost(id, title string) domain.Post {
	return domain.Post{ID: id, Title: title, Body: "body text", ModerationStatus: domain.StatusApproved}
}

func TestSearchSemantic(t *testing.T) {
	repo := &mockPostRepo{}
	repo.searchSimilarFn = func(_ context.Context, _ []float32, k int) ([]post.Hit, error) {
		if k != 20 {
			t.Errorf("k = %d, want 20", k)
		}
		return []post.Hit{
			{Post: approvedPost("p-1", "joint bleeds"), Similarity: 0.5},
			{Post: approvedPost("p-2", "travel tips"), Similarity: 0.9},
			{Post: approvedPost("p-3", "noise"), Similarity: 0.1},
		}, nil
	}

	results, method, err := newService(repo, &mockEmbedder{vec: []float32{0.1}}).Search(context.Background(), "bleeds")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if method != domain.SearchSemantic {
		t.Errorf("method = %q, want semantic", method)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Post.ID != "p-2" || results[1].Post.ID != "p-1" {
		t.Errorf("order = %s, %s; want p-2, p-1", results[0].Post.ID, results[1].Post.ID)
	}
	if results[0].Relevance == nil || *results[0].Relevance != 0.9 {
		t.Errorf("relevance = %v", results[0].Relevance)
	}
}

func TestSearchKeywordWhenEmbeddingUnavailable(t *testing.T) {
	repo := &mockPostRepo{}
	repo.searchSimilarFn = func(context.Context, []float32, int) ([]post.Hit, error) {
		t.Fatal("vector search must not run without an embedding")
		return nil, nil
	}
	repo.listApprovedFn = func(context.Context, int) ([]domain.Post, error) {
		return []domain.Post{
			approvedPost("p-1", "Travel checklist"),
			approvedPost("p-2", "Joint pain diary"),
		}, nil
	}

	results, method, err := newService(repo, &mockEmbedder{vec: nil}).Search(context.Background(), "TRAVEL")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if method != domain.SearchKeyword {
		t.Errorf("method = %q, want keyword", method)
	}
	if len(results) != 1 || results[0].Post.ID != "p-1" {
		t.Errorf("results = %+v", results)
	}
	if results[0].Relevance != nil {
		t.Errorf("keyword results carry no relevance, got %v", *results[0].Relevance)
	}
}

func TestSearchKeywordWhenIndexDegraded(t *testing.T) {
	repo := &mockPostRepo{}
	repo.searchSimilarFn = func(context.Context, []float32, int) ([]post.Hit, error) {
		return nil, errors.New("index degraded")
	}
	repo.listApprovedFn = func(context.Context, int) ([]domain.Post, error) {
		return []domain.Post{approvedPost("p-1", "factor dosing")}, nil
	}

	results, method, err := newService(repo, &mockEmbedder{vec: []float32{0.1}}).Search(context.Background(), "dosing")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if method != domain.SearchKeyword || len(results) != 1 {
		t.Errorf("method = %q, results = %d", method, len(results))
	}
}

func TestSearchKeywordWhenNoQualifyingMatches(t *testing.T) {
	repo := &mockPostRepo{}
	repo.searchSimilarFn = func(context.Context, []float32, int) ([]post.Hit, error) {
		// All below the similarity threshold.
		return []post.Hit{{Post: approvedPost("p-1", "noise"), Similarity: 0.1}}, nil
	}
	repo.listApprovedFn = func(context.Context, int) ([]domain.Post, error) {
		return []domain.Post{approvedPost("p-2", "factor dosing")}, nil
	}

	results, method, err := newService(repo, &mockEmbedder{vec: []float32{0.1}}).Search(context.Background(), "dosing")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if method != domain.SearchKeyword || len(results) != 1 || results[0].Post.ID != "p-2" {
		t.Errorf("method = %q, results = %+v", method, results)
	}
}

func TestSearchKeywordMatchesBody(t *testing.T) {
	repo := &mockPostRepo{}
	repo.listApprovedFn = func(context.Context, int) ([]domain.Post, error) {
		p := approvedPost("p-1", "untitled")
		p.Body = "Our infusion schedule changed."
		return []domain.Post{p}, nil
	}

	results, _, err := newService(repo, &mockEmbedder{}).Search(context.Background(), "infusion")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected body match, got %d results", len(results))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	repo := &mockPostRepo{}
	_, _, err := newService(repo, &mockEmbedder{}).Search(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}
