// Package matching ranks peer profiles for a member by blending
// attribute affinity with embedding similarity.
package matching

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/logger"
)

// fallbackListLimit bounds the rule-only candidate scan when vector
// search is unavailable.
const fallbackListLimit = 100

// Config holds matching policy settings.
type Config struct {
	CandidatePool int
	TopN          int
}

// Service implements peer matching.
type Service struct {
	profiles  profileRepo
	inference embedder
	cfg       Config
}

// New creates a matching service.
func New(profiles profileRepo, inference embedder, cfg Config) *Service {
	return &Service{
		profiles:  profiles,
		inference: inference,
		cfg:       cfg,
	}
}

// FindMatches returns the top candidates for a member, best first.
// Hybrid scoring applies when the member's embedding and vector search
// are both available; otherwise ranking degrades to rule scores only.
func (s *Service) FindMatches(ctx context.Context, profileID string) ([]domain.ScoredCandidate, error) {
	log := logger.FromContext(ctx)

	own, err := s.profiles.Get(ctx, profileID)
	if err != nil {
		return nil, err
	}

	vec := own.Embedding
	if vec == nil {
		vec = s.inference.Embed(ctx, own.EmbeddingText())
	}

	if vec != nil {
		candidates, err := s.hybridCandidates(ctx, own, vec)
		if err == nil && len(candidates) > 0 {
			return rank(candidates, s.cfg.TopN), nil
		}
		if err != nil {
			log.Warn("vector matching degraded to rule-based",
				zap.String("profile_id", profileID),
				zap.Error(err))
		}
	}

	candidates, err := s.ruleCandidates(ctx, own)
	if err != nil {
		return nil, err
	}
	return rank(candidates, s.cfg.TopN), nil
}

func (s *Service) hybridCandidates(ctx context.Context, own *domain.Profile, vec []float32) ([]domain.ScoredCandidate, error) {
	hits, err := s.profiles.SearchSimilar(ctx, vec, own.ID, s.cfg.CandidatePool)
	if err != nil {
		return nil, fmt.Errorf("similar profiles: %w", err)
	}

	candidates := make([]domain.ScoredCandidate, 0, len(hits))
	for _, hit := range hits {
		rule := RuleScore(own, &hit.Profile)
		sim := hit.Similarity
		candidates = append(candidates, domain.ScoredCandidate{
			CandidateID: hit.Profile.ID,
			FirstName:   hit.Profile.FirstName,
			LastName:    hit.Profile.LastName,
			RuleScore:   rule,
			Similarity:  &sim,
			FinalScore:  HybridScore(rule, &sim),
			Method:      domain.MatchHybrid,
		})
	}
	return candidates, nil
}

func (s *Service) ruleCandidates(ctx context.Context, own *domain.Profile) ([]domain.ScoredCandidate, error) {
	eligible, err := s.profiles.ListEligible(ctx, own.ID, fallbackListLimit)
	if err != nil {
		return nil, fmt.Errorf("eligible profiles: %w", err)
	}

	candidates := make([]domain.ScoredCandidate, 0, len(eligible))
	for i := range eligible {
		p := &eligible[i]
		rule := RuleScore(own, p)
		candidates = append(candidates, domain.ScoredCandidate{
			CandidateID: p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			RuleScore:   rule,
			FinalScore:  HybridScore(rule, nil),
			Method:      domain.MatchRuleBased,
		})
	}
	return candidates, nil
}

// rank orders candidates by final score, breaking ties by rule score and
// then original position, and keeps the top n.
func rank(candidates []domain.ScoredCandidate, n int) []domain.ScoredCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].FinalScore != candidates[j].FinalScore {
			return candidates[i].FinalScore > candidates[j].FinalScore
		}
		return candidates[i].RuleScore > candidates[j].RuleScore
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}
