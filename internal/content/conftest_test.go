package content

import (
	"context"
	"testing"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/ratelimit"
)

type mockPostRepo struct {
	saved     []*domain.Post
	getFn     func(ctx context.Context, id string) (*domain.Post, error)
	embedding map[string][]float32
	autoTags  map[string][]string
	summaries map[string]string
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{
		embedding: map[string][]float32{},
		autoTags:  map[string][]string{},
		summaries: map[string]string{},
	}
}

func (m *mockPostRepo) Save(_ context.Context, p *domain.Post) error {
	m.saved = append(m.saved, p)
	return nil
}

func (m *mockPostRepo) Get(ctx context.Context, id string) (*domain.Post, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrPostNotFound
}

func (m *mockPostRepo) SetEmbedding(_ context.Context, id string, vec []float32) error {
	m.embedding[id] = vec
	return nil
}

func (m *mockPostRepo) SetAutoTags(_ context.Context, id string, tags []string) error {
	m.autoTags[id] = tags
	return nil
}

func (m *mockPostRepo) SetSummary(_ context.Context, id, summary string, _ time.Time) error {
	m.summaries[id] = summary
	return nil
}

type mockCommentRepo struct {
	saved  []*domain.Comment
	listFn func(ctx context.Context, postID string) ([]domain.Comment, error)
	count  int
}

func (m *mockCommentRepo) Save(_ context.Context, c *domain.Comment) error {
	m.saved = append(m.saved, c)
	return nil
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	if m.listFn != nil {
		return m.listFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepo) CountByPost(context.Context, string) (int, error) {
	return m.count, nil
}

type mockNotifier struct {
	created []domain.Notification
}

func (m *mockNotifier) Create(_ context.Context, n *domain.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

type mockLimiter struct {
	allowed bool
	action  string
}

func (m *mockLimiter) Check(_, action string) ratelimit.Decision {
	m.action = action
	if m.allowed {
		return ratelimit.Decision{Allowed: true, Remaining: 1}
	}
	return ratelimit.Decision{Allowed: false}
}

type mockInference struct {
	vec     []float32
	verdict *domain.ModerationVerdict
	topics  []domain.LabelScore
	summary string

	summarizeInput string
}

func (m *mockInference) Embed(context.Context, string) []float32 { return m.vec }

func (m *mockInference) ClassifyToxicity(context.Context, string, float64) *domain.ModerationVerdict {
	return m.verdict
}

func (m *mockInference) ClassifyTopics(context.Context, string, []string) []domain.LabelScore {
	return m.topics
}

func (m *mockInference) Summarize(_ context.Context, text string) string {
	m.summarizeInput = text
	return m.summary
}

type mockBadges struct {
	approvedFor []string
}

func (m *mockBadges) OnPostApproved(_ context.Context, authorID string) error {
	m.approvedFor = append(m.approvedFor, authorID)
	return nil
}

// syncRunner executes tasks inline so tests observe their effects.
type syncRunner struct {
	names []string
}

func (r *syncRunner) Submit(name string, fn func(ctx context.Context) error) bool {
	r.names = append(r.names, name)
	_ = fn(context.Background())
	return true
}

type fixture struct {
	svc      *Service
	posts    *mockPostRepo
	comments *mockCommentRepo
	notes    *mockNotifier
	limiter  *mockLimiter
	infer    *mockInference
	badges   *mockBadges
	runner   *syncRunner
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		posts:    newMockPostRepo(),
		comments: &mockCommentRepo{},
		notes:    &mockNotifier{},
		limiter:  &mockLimiter{allowed: true},
		infer:    &mockInference{},
		badges:   &mockBadges{},
		runner:   &syncRunner{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(
		f.posts, f.comments, f.notes, f.limiter, f.infer, f.badges, f.runner,
		Config{
			ToxicityThreshold:  0.7,
			TaggingThreshold:   0.4,
			TaggingMaxLabels:   3,
			SummaryMinComments: 3,
			SummaryStaleAfter:  time.Hour,
		},
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func cleanVerdict() *domain.ModerationVerdict {
	return &domain.ModerationVerdict{IsToxic: false}
}

func toxicVerdict() *domain.ModerationVerdict {
	return &domain.ModerationVerdict{
		IsToxic: true,
		Labels:  []domain.LabelScore{{Label: "toxic", Score: 0.95}},
	}
}
