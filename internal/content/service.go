// Package content owns the write path for posts and comments: rate
// limiting, the toxicity gate, persistence, and the asynchronous
// enrichment that follows (embeddings, auto-tags, badges, summaries).
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hemoconnect/hemoconnect/internal/domain"
	"github.com/hemoconnect/hemoconnect/internal/logger"
	"github.com/hemoconnect/hemoconnect/internal/metrics"
)

const (
	actionCreatePost    = "create-post"
	actionCreateComment = "create-comment"
)

// Config holds the content pipeline policy settings.
type Config struct {
	ToxicityThreshold  float64
	TaggingThreshold   float64
	TaggingMaxLabels   int
	SummaryMinComments int
	SummaryStaleAfter  time.Duration
}

// Service implements post and comment submission.
type Service struct {
	posts     postRepo
	comments  commentRepo
	notes     notifier
	limiter   limiter
	inference inferenceClient
	badges    badgeEvaluator
	runner    taskRunner
	cfg       Config

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a content service.
func New(
	posts postRepo,
	comments commentRepo,
	notes notifier,
	lim limiter,
	inf inferenceClient,
	badges badgeEvaluator,
	runner taskRunner,
	cfg Config,
	opts ...Option,
) *Service {
	s := &Service{
		posts:     posts,
		comments:  comments,
		notes:     notes,
		limiter:   lim,
		inference: inf,
		badges:    badges,
		runner:    runner,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitPost moderates and stores a new post. Toxic posts are persisted
// as flagged rather than rejected so moderators can review them. An
// unavailable moderation verdict lets the post through.
func (s *Service) SubmitPost(ctx context.Context, authorID, title, body string, tags []string) (*domain.Post, error) {
	if d := s.limiter.Check(authorID, actionCreatePost); !d.Allowed {
		return nil, domain.ErrRateLimited
	}

	status := domain.StatusApproved
	verdict := s.inference.ClassifyToxicity(ctx, title+"\n\n"+body, s.cfg.ToxicityThreshold)
	switch {
	case verdict == nil:
		metrics.ModerationVerdictsTotal.WithLabelValues("unavailable").Inc()
	case verdict.IsToxic:
		status = domain.StatusFlagged
		metrics.ModerationVerdictsTotal.WithLabelValues("flagged").Inc()
	default:
		metrics.ModerationVerdictsTotal.WithLabelValues("approved").Inc()
	}

	post := &domain.Post{
		ID:               uuid.NewString(),
		AuthorID:         authorID,
		Title:            title,
		Body:             body,
		Excerpt:          domain.MakeExcerpt(body),
		Tags:             tags,
		ModerationStatus: status,
		CreatedAt:        s.now(),
	}
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("save post: %w", err)
	}

	s.enrichPostAsync(post)

	return post, nil
}

// enrichPostAsync schedules embedding, auto-tagging and badge work for a
// freshly stored post.
func (s *Service) enrichPostAsync(post *domain.Post) {
	postID := post.ID
	embedText := post.EmbeddingText()
	authorID := post.AuthorID
	approved := post.ModerationStatus == domain.StatusApproved

	s.runner.Submit("post-embedding", func(ctx context.Context) error {
		vec := s.inference.Embed(ctx, embedText)
		if vec == nil {
			return nil
		}
		return s.posts.SetEmbedding(ctx, postID, vec)
	})

	s.runner.Submit("post-auto-tags", func(ctx context.Context) error {
		scores := s.inference.ClassifyTopics(ctx, embedText, domain.InterestTopics)
		if scores == nil {
			return nil
		}
		tags := selectTags(scores, s.cfg.TaggingThreshold, s.cfg.TaggingMaxLabels)
		if len(tags) == 0 {
			return nil
		}
		return s.posts.SetAutoTags(ctx, postID, tags)
	})

	if approved {
		s.runner.Submit("post-badges", func(ctx context.Context) error {
			return s.badges.OnPostApproved(ctx, authorID)
		})
	}
}

// SubmitComment moderates and stores a new comment. Toxic comments are
// rejected outright; an unavailable verdict lets the comment through.
func (s *Service) SubmitComment(ctx context.Context, postID, authorID, body string) (*domain.Comment, error) {
	if d := s.limiter.Check(authorID, actionCreateComment); !d.Allowed {
		return nil, domain.ErrRateLimited
	}

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}

	verdict := s.inference.ClassifyToxicity(ctx, body, s.cfg.ToxicityThreshold)
	switch {
	case verdict == nil:
		metrics.ModerationVerdictsTotal.WithLabelValues("unavailable").Inc()
	case verdict.IsToxic:
		metrics.ModerationVerdictsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrContentRejected
	default:
		metrics.ModerationVerdictsTotal.WithLabelValues("approved").Inc()
	}

	comment := &domain.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("save comment: %w", err)
	}

	s.runner.Submit("summary-refresh", func(ctx context.Context) error {
		_, err := s.RefreshSummary(ctx, postID, false)
		return err
	})

	if post.AuthorID != authorID {
		postAuthor := post.AuthorID
		s.runner.Submit("comment-notification", func(ctx context.Context) error {
			return s.notes.Create(ctx, &domain.Notification{
				ID:        uuid.NewString(),
				UserID:    postAuthor,
				ActorID:   authorID,
				Type:      "comment",
				PostID:    postID,
				Message:   "Someone commented on your post.",
				CreatedAt: s.now(),
			})
		})
	}

	return comment, nil
}

// RefreshSummary regenerates a post's thread summary. Unless forced, the
// thread must have enough comments and the existing summary must be
// stale. An unavailable summarizer leaves the stored summary untouched.
func (s *Service) RefreshSummary(ctx context.Context, postID string, force bool) (string, error) {
	log := logger.FromContext(ctx)

	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return "", err
	}

	count, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("count comments: %w", err)
	}
	if count < s.cfg.SummaryMinComments {
		return post.Summary, nil
	}

	if !force && !post.SummaryUpdatedAt.IsZero() {
		if s.now().Sub(post.SummaryUpdatedAt) < s.cfg.SummaryStaleAfter {
			return post.Summary, nil
		}
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return "", fmt.Errorf("list comments: %w", err)
	}
	bodies := make([]string, 0, len(comments))
	for _, c := range comments {
		bodies = append(bodies, c.Body)
	}

	text := domain.ComposeThreadText(post.Title, post.Body, bodies)
	summary := s.inference.Summarize(ctx, text)
	if summary == "" {
		log.Warn("summarization unavailable, keeping existing summary",
			zap.String("post_id", postID))
		return post.Summary, nil
	}

	if err := s.posts.SetSummary(ctx, postID, summary, s.now()); err != nil {
		return "", fmt.Errorf("store summary: %w", err)
	}
	return summary, nil
}

// selectTags keeps labels scoring above the threshold, at most max,
// assuming scores are already ordered best first.
func selectTags(scores []domain.LabelScore, threshold float64, max int) []string {
	tags := make([]string, 0, max)
	for _, s := range scores {
		if s.Score <= threshold {
			continue
		}
		tags = append(tags, s.Label)
		if len(tags) >= max {
			break
		}
	}
	return tags
}
