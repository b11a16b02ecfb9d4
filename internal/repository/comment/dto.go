package comment

import (
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

type commentDoc struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	LikeCount int    `json:"like_count"`
	CreatedAt int64  `json:"created_at"`
}

func buildDoc(c *domain.Comment) *commentDoc {
	return &commentDoc{
		ID:        c.ID,
		PostID:    c.PostID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt.Unix(),
	}
}

func (d *commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:        d.ID,
		PostID:    d.PostID,
		AuthorID:  d.AuthorID,
		Body:      d.Body,
		LikeCount: d.LikeCount,
		CreatedAt: time.Unix(d.CreatedAt, 0).UTC(),
	}
}
