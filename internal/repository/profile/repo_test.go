package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

func TestSaveWritesBooleanTags(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotKey string
	var gotDoc map[string]any
	ms.jsonSetFn = func(_ context.Context, key, path string, data []byte) error {
		gotKey = key
		if err := json.Unmarshal(data, &gotDoc); err != nil {
			t.Fatalf("unmarshal written doc: %v", err)
		}
		return nil
	}

	if err := repo.Save(context.Background(), testProfile("p-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if gotKey != "hemo:profile:p-1" {
		t.Errorf("key = %q", gotKey)
	}
	if gotDoc["visible"] != "true" || gotDoc["matching"] != "true" {
		t.Errorf("flags stored as %v / %v, want \"true\"", gotDoc["visible"], gotDoc["matching"])
	}
}

func TestGetNotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return nil, db.ErrKeyNotFound
	}

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestGetUnwrapsJSONPathArray(t *testing.T) {
	repo, ms := newTestRepo(t)

	doc, _ := json.Marshal([]any{buildDoc(testProfile("p-1"))})
	ms.jsonGetFn = func(context.Context, string, ...string) ([]byte, error) {
		return doc, nil
	}

	p, err := repo.Get(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.ID != "p-1" || !p.Visible || !p.MatchingEnabled {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestSearchSimilarExcludesSelf(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotQuery *db.KNNQuery
	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		gotQuery = q
		doc, _ := json.Marshal(buildDoc(testProfile("p-2")))
		return &db.SearchResult{
			Total: 1,
			Entries: []db.SearchEntry{
				{Key: "hemo:profile:p-2", Score: 0.8, Fields: map[string]string{"$": string(doc)}},
			},
		}, nil
	}

	hits, err := repo.SearchSimilar(context.Background(), testVector(domain.EmbeddingDim), "p-1", 10)
	if err != nil {
		t.Fatalf("SearchSimilar failed: %v", err)
	}

	if gotQuery.IndexName != "hemo:profiles:idx" {
		t.Errorf("index = %q", gotQuery.IndexName)
	}
	if !strings.Contains(gotQuery.Filter, "-@id:{p\\-1}") {
		t.Errorf("filter does not exclude self: %q", gotQuery.Filter)
	}
	if !strings.Contains(gotQuery.Filter, "@visible:{true}") || !strings.Contains(gotQuery.Filter, "@matching:{true}") {
		t.Errorf("filter missing eligibility tags: %q", gotQuery.Filter)
	}

	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Profile.ID != "p-2" || hits[0].Similarity != 0.8 {
		t.Errorf("hit = %+v", hits[0])
	}
}

func TestSetEmbeddingTargetsField(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotPath string
	ms.jsonSetFn = func(_ context.Context, _, path string, _ []byte) error {
		gotPath = path
		return nil
	}

	if err := repo.SetEmbedding(context.Background(), "p-1", testVector(4)); err != nil {
		t.Fatalf("SetEmbedding failed: %v", err)
	}
	if gotPath != "$.embedding" {
		t.Errorf("path = %q, want $.embedding", gotPath)
	}
}
