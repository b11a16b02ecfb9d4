package post

import (
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

// postDoc is the stored JSON shape. Timestamps are unix seconds so they
// can back NUMERIC index fields.
type postDoc struct {
	ID               string    `json:"id"`
	AuthorID         string    `json:"author_id"`
	Title            string    `json:"title"`
	Body             string    `json:"body"`
	Excerpt          string    `json:"excerpt,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	AutoTags         []string  `json:"auto_tags,omitempty"`
	Status           string    `json:"status"`
	Embedding        []float32 `json:"embedding,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	SummaryUpdatedAt int64     `json:"summary_updated_at,omitempty"`
	CreatedAt        int64     `json:"created_at"`
}

func buildDoc(p *domain.Post) *postDoc {
	doc := &postDoc{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		Title:     p.Title,
		Body:      p.Body,
		Excerpt:   p.Excerpt,
		Tags:      p.Tags,
		AutoTags:  p.AutoTags,
		Status:    string(p.ModerationStatus),
		Embedding: p.Embedding,
		Summary:   p.Summary,
		CreatedAt: p.CreatedAt.Unix(),
	}
	if !p.SummaryUpdatedAt.IsZero() {
		doc.SummaryUpdatedAt = p.SummaryUpdatedAt.Unix()
	}
	return doc
}

func (d *postDoc) toDomain() *domain.Post {
	p := &domain.Post{
		ID:               d.ID,
		AuthorID:         d.AuthorID,
		Title:            d.Title,
		Body:             d.Body,
		Excerpt:          d.Excerpt,
		Tags:             d.Tags,
		AutoTags:         d.AutoTags,
		ModerationStatus: domain.ModerationStatus(d.Status),
		Embedding:        d.Embedding,
		Summary:          d.Summary,
		CreatedAt:        time.Unix(d.CreatedAt, 0).UTC(),
	}
	if d.SummaryUpdatedAt > 0 {
		p.SummaryUpdatedAt = time.Unix(d.SummaryUpdatedAt, 0).UTC()
	}
	return p
}
