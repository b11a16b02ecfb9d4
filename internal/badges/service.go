// Package badges awards achievement badges in response to member
// activity. Evaluation is trigger driven: a badge is only considered
// when the event that could earn it happens, so activity that occurred
// before a badge existed is never retroactively swept.
package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

const (
	activeMemberPosts   = 10
	guidingLightLikes   = 10
	communityBuilderMin = 3
	connectorMinChats   = 3
)

var badgeMessages = map[domain.BadgeType]string{
	domain.BadgeFirstPost:        "You earned the First Post badge!",
	domain.BadgeActiveMember:     "You earned the Active Member badge!",
	domain.BadgeGuidingLight:     "You earned the Guiding Light badge!",
	domain.BadgeCommunityBuilder: "You earned the Community Builder badge!",
	domain.BadgeConnector:        "You earned the Connector badge!",
}

// Service evaluates and awards badges.
type Service struct {
	badges        badgeRepo
	notifications notifier
	posts         postCounter

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. For tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a badge service.
func New(badges badgeRepo, notifications notifier, posts postCounter, opts ...Option) *Service {
	s := &Service{
		badges:        badges,
		notifications: notifications,
		posts:         posts,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnPostApproved evaluates post-count badges for the author.
func (s *Service) OnPostApproved(ctx context.Context, authorID string) error {
	count, err := s.posts.CountApprovedByAuthor(ctx, authorID)
	if err != nil {
		return fmt.Errorf("count posts for %s: %w", authorID, err)
	}

	if count >= 1 {
		if err := s.award(ctx, authorID, domain.BadgeFirstPost); err != nil {
			return err
		}
	}
	if count >= activeMemberPosts {
		if err := s.award(ctx, authorID, domain.BadgeActiveMember); err != nil {
			return err
		}
	}
	return nil
}

// OnCommentLiked evaluates the helpful-comment badge for the comment's
// author after a like.
func (s *Service) OnCommentLiked(ctx context.Context, c *domain.Comment) error {
	if c.LikeCount < guidingLightLikes {
		return nil
	}
	return s.award(ctx, c.AuthorID, domain.BadgeGuidingLight)
}

// OnCommunityJoined evaluates the community badge after a membership
// change. memberships is the member's current community count.
func (s *Service) OnCommunityJoined(ctx context.Context, userID string, memberships int) error {
	if memberships < communityBuilderMin {
		return nil
	}
	return s.award(ctx, userID, domain.BadgeCommunityBuilder)
}

// OnChatConnected evaluates the connector badge after a chat connection.
// connections is the member's current connected chat count.
func (s *Service) OnChatConnected(ctx context.Context, userID string, connections int) error {
	if connections < connectorMinChats {
		return nil
	}
	return s.award(ctx, userID, domain.BadgeConnector)
}

// award records the badge and, only when this call created it, emits
// exactly one notification. An existing award short-circuits before the
// conditional write; the write itself still guards against races.
func (s *Service) award(ctx context.Context, userID string, badgeType domain.BadgeType) error {
	has, err := s.badges.Has(ctx, userID, badgeType)
	if err != nil {
		return fmt.Errorf("check %s for %s: %w", badgeType, userID, err)
	}
	if has {
		return nil
	}

	created, err := s.badges.Award(ctx, &domain.BadgeAward{
		ActorID:  userID,
		Type:     badgeType,
		EarnedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("award %s to %s: %w", badgeType, userID, err)
	}
	if !created {
		return nil
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      "badge_earned",
		BadgeType: badgeType,
		Message:   badgeMessages[badgeType],
		CreatedAt: s.now(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("notify badge %s for %s: %w", badgeType, userID, err)
	}
	return nil
}
