package badges

import (
	"context"
	"testing"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

type mockBadgeRepo struct {
	awarded    map[string]bool
	hasCalls   int
	awardCalls int
}

func (m *mockBadgeRepo) Has(_ context.Context, actorID string, badgeType domain.BadgeType) (bool, error) {
	m.hasCalls++
	return m.awarded[actorID+":"+string(badgeType)], nil
}

func (m *mockBadgeRepo) Award(_ context.Context, award *domain.BadgeAward) (bool, error) {
	m.awardCalls++
	key := award.ActorID + ":" + string(award.Type)
	if m.awarded[key] {
		return false, nil
	}
	if m.awarded == nil {
		m.awarded = map[string]bool{}
	}
	m.awarded[key] = true
	return true, nil
}

type mockNotifier struct {
	created []domain.Notification
}

func (m *mockNotifier) Create(_ context.Context, n *domain.Notification) error {
	m.created = append(m.created, *n)
	return nil
}

type mockPostCounter struct {
	count int
}

func (m *mockPostCounter) CountApprovedByAuthor(context.Context, string) (int, error) {
	return m.count, nil
}

func newTestService(posts *mockPostCounter) (*Service, *mockBadgeRepo, *mockNotifier) {
	badges := &mockBadgeRepo{awarded: map[string]bool{}}
	notes := &mockNotifier{}
	svc := New(badges, notes, posts, WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	}))
	return svc, badges, notes
}

func TestOnPostApprovedAwardsFirstPost(t *testing.T) {
	svc, badges, notes := newTestService(&mockPostCounter{count: 1})

	if err := svc.OnPostApproved(context.Background(), "user-1"); err != nil {
		t.Fatalf("OnPostApproved failed: %v", err)
	}

	if !badges.awarded["user-1:first_post"] {
		t.Error("first_post not awarded")
	}
	if badges.awarded["user-1:active_member"] {
		t.Error("active_member awarded with only 1 post")
	}
	if len(notes.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notes.created))
	}
	if notes.created[0].BadgeType != domain.BadgeFirstPost || notes.created[0].UserID != "user-1" {
		t.Errorf("notification = %+v", notes.created[0])
	}
	if notes.created[0].ID == "" {
		t.Error("notification has no ID")
	}
}

func TestOnPostApprovedAwardsActiveMemberAtTen(t *testing.T) {
	svc, badges, notes := newTestService(&mockPostCounter{count: 10})

	if err := svc.OnPostApproved(context.Background(), "user-1"); err != nil {
		t.Fatalf("OnPostApproved failed: %v", err)
	}

	if !badges.awarded["user-1:first_post"] || !badges.awarded["user-1:active_member"] {
		t.Errorf("awarded = %v", badges.awarded)
	}
	if len(notes.created) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(notes.created))
	}
}

func TestAwardIsIdempotent(t *testing.T) {
	svc, _, notes := newTestService(&mockPostCounter{count: 1})

	for i := 0; i < 2; i++ {
		if err := svc.OnPostApproved(context.Background(), "user-1"); err != nil {
			t.Fatalf("OnPostApproved run %d failed: %v", i+1, err)
		}
	}

	if len(notes.created) != 1 {
		t.Errorf("expected exactly 1 notification after repeat trigger, got %d", len(notes.created))
	}
}

func TestAwardSkipsWriteWhenAlreadyHeld(t *testing.T) {
	svc, badges, notes := newTestService(&mockPostCounter{count: 1})
	badges.awarded["user-1:first_post"] = true

	if err := svc.OnPostApproved(context.Background(), "user-1"); err != nil {
		t.Fatalf("OnPostApproved failed: %v", err)
	}

	if badges.hasCalls == 0 {
		t.Error("existing award must be checked before the write")
	}
	if badges.awardCalls != 0 {
		t.Errorf("awardCalls = %d, want 0 for an already-held badge", badges.awardCalls)
	}
	if len(notes.created) != 0 {
		t.Errorf("expected no notification, got %d", len(notes.created))
	}
}

func TestOnCommentLikedThreshold(t *testing.T) {
	svc, badges, _ := newTestService(&mockPostCounter{})

	below := &domain.Comment{ID: "c-1", AuthorID: "user-2", LikeCount: 9}
	if err := svc.OnCommentLiked(context.Background(), below); err != nil {
		t.Fatalf("OnCommentLiked failed: %v", err)
	}
	if badges.awarded["user-2:guiding_light"] {
		t.Error("guiding_light awarded below threshold")
	}

	at := &domain.Comment{ID: "c-1", AuthorID: "user-2", LikeCount: 10}
	if err := svc.OnCommentLiked(context.Background(), at); err != nil {
		t.Fatalf("OnCommentLiked failed: %v", err)
	}
	if !badges.awarded["user-2:guiding_light"] {
		t.Error("guiding_light not awarded at threshold")
	}
}

func TestMembershipAndConnectionBadges(t *testing.T) {
	svc, badges, _ := newTestService(&mockPostCounter{})

	if err := svc.OnCommunityJoined(context.Background(), "user-3", 2); err != nil {
		t.Fatal(err)
	}
	if err := svc.OnCommunityJoined(context.Background(), "user-3", 3); err != nil {
		t.Fatal(err)
	}
	if err := svc.OnChatConnected(context.Background(), "user-3", 3); err != nil {
		t.Fatal(err)
	}

	if !badges.awarded["user-3:community_builder"] || !badges.awarded["user-3:connector"] {
		t.Errorf("awarded = %v", badges.awarded)
	}
}
