package domain

// SearchMethod distinguishes the path that produced a search response.
type SearchMethod string

const (
	// SearchSemantic results come from vector similarity.
	SearchSemantic SearchMethod = "semantic"
	// SearchKeyword results come from the substring fallback.
	SearchKeyword SearchMethod = "keyword"
)

// SearchResult is one matched post. Relevance is nil for keyword matches so
// both paths share one shape; downstream consumers only branch on Method
// for a display label. A response is homogeneous: all results share the
// same method.
type SearchResult struct {
	Post      Post
	Relevance *float64
	Method    SearchMethod
}
