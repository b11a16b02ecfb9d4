package profile

import (
	"github.com/hemoconnect/hemoconnect/internal/db"
	"github.com/hemoconnect/hemoconnect/internal/domain"
)

// IndexDefinition describes the FT index backing profile matching.
func IndexDefinition() *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName,
		Prefixes: []string{keyPrefix},
		Fields: []db.IndexField{
			{JSONPath: "$.id", Alias: "id", Type: db.IndexFieldTag},
			{JSONPath: "$.visible", Alias: "visible", Type: db.IndexFieldTag},
			{JSONPath: "$.matching", Alias: "matching", Type: db.IndexFieldTag},
			{JSONPath: "$.hemophilia_type", Alias: "hemophilia_type", Type: db.IndexFieldTag},
			{JSONPath: "$.severity", Alias: "severity", Type: db.IndexFieldTag},
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
