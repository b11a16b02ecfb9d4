package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces. Consumers
// (repositories) depend on narrow subsets of it.
type Store interface {
	Pinger
	JSONStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores a value only if the key does not exist yet.
	// Returns true when the write happened.
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// KNNQuery describes a vector similarity search against an FT index.
// Filter is an optional FT.SEARCH pre-filter expression (e.g. a TAG match);
// empty means match-all.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	Filter       string
	K            int
	ReturnFields []string
}

// SearchEntry is one matched document. Score is a cosine similarity in
// [0,1] for KNN queries and zero for plain list queries.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SearchResult holds FT.SEARCH output.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}
