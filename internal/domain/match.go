package domain

// MatchMethod distinguishes how a candidate's final score was produced.
type MatchMethod string

const (
	// MatchHybrid blends rule score with vector similarity.
	MatchHybrid MatchMethod = "hybrid"
	// MatchRuleBased is the pure rule score fallback.
	MatchRuleBased MatchMethod = "rule-based"
)

// ScoredCandidate is a peer-matching result. Similarity is nil on the
// rule-based path; Method is MatchHybrid iff Similarity was present and
// successfully blended.
type ScoredCandidate struct {
	CandidateID string
	FirstName   string
	LastName    string
	RuleScore   int
	Similarity  *float64
	FinalScore  int
	Method      MatchMethod
}
