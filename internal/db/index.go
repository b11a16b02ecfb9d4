package db

import "errors"

// IndexFieldType is an FT schema field type.
type IndexFieldType string

const (
	IndexFieldTag     IndexFieldType = "TAG"
	IndexFieldText    IndexFieldType = "TEXT"
	IndexFieldNumeric IndexFieldType = "NUMERIC"
	IndexFieldVector  IndexFieldType = "VECTOR"
)

// IndexField is one field in an FT index schema. JSONPath is the source
// path for JSON-backed indexes; Alias is the queryable attribute name.
type IndexField struct {
	JSONPath string
	Alias    string
	Type     IndexFieldType

	// Vector attributes (HNSW, cosine distance, FLOAT32).
	VectorDim         int
	VectorM           int
	VectorEFConstruct int
}

// IndexDefinition describes an FT index over JSON documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks the definition for obvious mistakes.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.JSONPath == "" {
			return errors.New("field json path is required")
		}
		if f.Alias == "" {
			return errors.New("field alias is required")
		}
		if f.Type == IndexFieldVector && f.VectorDim <= 0 {
			return errors.New("vector DIM must be positive")
		}
	}
	return nil
}
