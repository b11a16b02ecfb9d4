package matching

import (
	"math"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	baseScore         = 50
	sameTypeBonus     = 20
	sameSeverityBonus = 15
	sharedTopicBonus  = 5

	minScore = 0
	maxScore = 99

	ruleWeight       = 0.4
	similarityWeight = 0.6
)

// RuleScore computes the attribute affinity between two profiles. The
// score is symmetric and clamped to [0, 99].
func RuleScore(a, b *domain.Profile) int {
	score := baseScore

	if a.HemophiliaType != "" && a.HemophiliaType == b.HemophiliaType {
		score += sameTypeBonus
	}
	if a.SeverityLevel != "" && a.SeverityLevel == b.SeverityLevel {
		score += sameSeverityBonus
	}
	score += sharedTopicBonus * sharedTopics(a.Topics, b.Topics)

	return clamp(score)
}

// HybridScore blends the rule score with embedding similarity. A nil
// similarity passes the rule score through unchanged.
func HybridScore(ruleScore int, similarity *float64) int {
	if similarity == nil {
		return clamp(ruleScore)
	}
	blended := float64(ruleScore)*ruleWeight + *similarity*100*similarityWeight
	return clamp(int(math.Round(blended)))
}

func sharedTopics(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	shared := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
			delete(set, t)
		}
	}
	return shared
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
