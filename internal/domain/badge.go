package domain

import "time"

// BadgeType identifies an achievement badge.
type BadgeType string

const (
	// BadgeFirstPost — the actor published a forum post.
	BadgeFirstPost BadgeType = "first_post"
	// BadgeActiveMember — the actor has 10+ approved posts.
	BadgeActiveMember BadgeType = "active_member"
	// BadgeGuidingLight — one of the actor's comments has 10+ likes.
	BadgeGuidingLight BadgeType = "guiding_light"
	// BadgeCommunityBuilder — the actor joined 3+ communities.
	BadgeCommunityBuilder BadgeType = "community_builder"
	// BadgeConnector — the actor chats with 3+ mutually-connected peers.
	BadgeConnector BadgeType = "connector"
)

// BadgeAward records a badge earned by an actor. Unique per
// (ActorID, Type); created exactly once and never mutated.
type BadgeAward struct {
	ActorID  string
	Type     BadgeType
	EarnedAt time.Time
}

// Notification is an outbound user notification event.
type Notification struct {
	ID        string
	UserID    string
	ActorID   string
	Type      string
	PostID    string
	BadgeType BadgeType
	Message   string
	CreatedAt time.Time
}
