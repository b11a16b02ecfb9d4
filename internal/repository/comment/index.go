package comment

import "github.com/hemoconnect/hemoconnect/internal/db"

// IndexDefinition describes the FT index backing per-post comment lookups.
func IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{JSONPath: "$.post_id", Alias: "post", Type: db.IndexFieldTag},
			{JSONPath: "$.author_id", Alias: "author", Type: db.IndexFieldTag},
			{JSONPath: "$.created_at", Alias: "created_at", Type: db.IndexFieldNumeric},
			{JSONPath: "$.like_count", Alias: "likes", Type: db.IndexFieldNumeric},
		},
	}
}
