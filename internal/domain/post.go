package domain

import (
	"fmt"
	"strings"
	"time"
)

// MaxSummaryInputChars caps text sent to the summarization model.
const MaxSummaryInputChars = 1024

// ModerationStatus is the moderation state of a post.
type ModerationStatus string

const (
	// StatusApproved content is publicly visible and searchable.
	StatusApproved ModerationStatus = "approved"
	// StatusFlagged content is visible to its author only, pending review.
	StatusFlagged ModerationStatus = "flagged"
)

// Post is a forum post with its AI-derived enrichment fields.
// Embedding, AutoTags and Summary are populated asynchronously and may be
// absent at any time.
type Post struct {
	ID               string
	AuthorID         string
	Title            string
	Body             string
	Excerpt          string
	Tags             []string
	AutoTags         []string
	ModerationStatus ModerationStatus
	Embedding        []float32
	Summary          string
	SummaryUpdatedAt time.Time
	CreatedAt        time.Time
}

// EmbeddingText composes the post's embedding input from title and body.
func (p Post) EmbeddingText() string {
	return Truncate(p.Title+". "+p.Body, MaxEmbeddingChars)
}

// MakeExcerpt returns roughly the first 200 bytes of body with an
// ellipsis when truncated. The cut never splits a rune.
func MakeExcerpt(body string) string {
	const n = 200
	if len(body) <= n {
		return body
	}
	return Truncate(body, n) + "..."
}

// Comment is a reply on a post.
type Comment struct {
	ID        string
	PostID    string
	AuthorID  string
	Body      string
	LikeCount int
	CreatedAt time.Time
}

// ComposeThreadText builds the summarization input for a thread:
// title, body, then each comment body in order, truncated to
// MaxSummaryInputChars.
func ComposeThreadText(title, body string, commentBodies []string) string {
	parts := make([]string, 0, 2+len(commentBodies))
	parts = append(parts, "Topic: "+title)
	parts = append(parts, "Original post: "+body)
	for i, b := range commentBodies {
		parts = append(parts, fmt.Sprintf("Reply %d: %s", i+1, b))
	}
	return Truncate(strings.Join(parts, "\n\n"), MaxSummaryInputChars)
}
