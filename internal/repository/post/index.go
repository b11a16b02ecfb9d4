package post

import (
	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

// IndexDefinition describes the FT index backing semantic post search.
func IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{JSONPath: "$.status", Alias: "status", Type: db.IndexFieldTag},
			{JSONPath: "$.author_id", Alias: "author", Type: db.IndexFieldTag},
			{JSONPath: "$.created_at", Alias: "created_at", Type: db.IndexFieldNumeric},
			{
				JSONPath:          "$.embedding",
				Alias:             "vector",
				Type:              db.IndexFieldVector,
				VectorDim:         domain.EmbeddingDim,
				VectorM:           16,
				VectorEFConstruct: 200,
			},
		},
	}
}
