package embcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/db"
)

type mockStore struct {
	data   map[string][]byte
	getErr error
	setErr error
}

func newMockStore() *mockStore {
	return &mockStore{data: map[string][]byte{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

type mockEmbedder struct {
	calls int
	vec   []float32
	err   error
}

func (m *mockEmbedder) Embed(context.Context, string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

func TestEmbedCachesMissThenHits(t *testing.T) {
	store := newMockStore()
	inner := &mockEmbedder{vec: []float32{0.25, -1.5}}
	c := New(inner, store, zap.NewNop())

	first, err := c.Embed(context.Background(), "travel with factor")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(store.data) != 1 {
		t.Fatalf("expected 1 cached entry, got %d", len(store.data))
	}

	second, err := c.Embed(context.Background(), "travel with factor")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (second call served from cache)", inner.calls)
	}
	if len(second) != len(first) || second[0] != first[0] || second[1] != first[1] {
		t.Errorf("cached vector %v != original %v", second, first)
	}
}

func TestEmbedDistinctTextsGetDistinctKeys(t *testing.T) {
	store := newMockStore()
	inner := &mockEmbedder{vec: []float32{0.1}}
	c := New(inner, store, zap.NewNop())

	if _, err := c.Embed(context.Background(), "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Embed(context.Background(), "second"); err != nil {
		t.Fatal(err)
	}

	if inner.calls != 2 || len(store.data) != 2 {
		t.Errorf("calls = %d, entries = %d; want 2 and 2", inner.calls, len(store.data))
	}
}

func TestEmbedCorruptEntryFallsThrough(t *testing.T) {
	store := newMockStore()
	store.data[cacheKey("query")] = []byte{1, 2, 3} // not a multiple of 4
	inner := &mockEmbedder{vec: []float32{0.1}}
	c := New(inner, store, zap.NewNop())

	vec, err := c.Embed(context.Background(), "query")
	if err != nil || vec == nil {
		t.Fatalf("Embed = %v, %v", vec, err)
	}
	if inner.calls != 1 {
		t.Errorf("corrupt entry must fall through to the provider")
	}
}

func TestEmbedStoreFailuresDoNotSurface(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("connection reset")
	store.setErr = errors.New("connection reset")
	inner := &mockEmbedder{vec: []float32{0.1}}
	c := New(inner, store, zap.NewNop())

	vec, err := c.Embed(context.Background(), "query")
	if err != nil || vec == nil {
		t.Errorf("cache failures must degrade to a provider call, got %v, %v", vec, err)
	}
}

func TestEmbedProviderErrorNotCached(t *testing.T) {
	store := newMockStore()
	inner := &mockEmbedder{err: errors.New("api error 503")}
	c := New(inner, store, zap.NewNop())

	if _, err := c.Embed(context.Background(), "query"); err == nil {
		t.Fatal("expected provider error")
	}
	if len(store.data) != 0 {
		t.Errorf("failed embeds must not be cached, got %d entries", len(store.data))
	}
}
