package notification

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hemoconnect/hemoconnect/internal/domain"
)

type notificationDoc struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ActorID   string `json:"actor_id,omitempty"`
	Type      string `json:"type"`
	PostID    string `json:"post_id,omitempty"`
	BadgeType string `json:"badge_type,omitempty"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

func buildDoc(n *domain.Notification) *notificationDoc {
	return &notificationDoc{
		ID:        n.ID,
		UserID:    n.UserID,
		ActorID:   n.ActorID,
		Type:      n.Type,
		PostID:    n.PostID,
		BadgeType: string(n.BadgeType),
		Message:   n.Message,
		CreatedAt: n.CreatedAt.Unix(),
	}
}

func (d *notificationDoc) toDomain() *domain.Notification {
	return &domain.Notification{
		ID:        d.ID,
		UserID:    d.UserID,
		ActorID:   d.ActorID,
		Type:      d.Type,
		PostID:    d.PostID,
		BadgeType: domain.BadgeType(d.BadgeType),
		Message:   d.Message,
		CreatedAt: time.Unix(d.CreatedAt, 0).UTC(),
	}
}

func parseDoc(raw []byte) (*domain.Notification, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var docs []notificationDoc
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		if len(docs) == 0 {
			return nil, domain.ErrNotFound
		}
		return docs[0].toDomain(), nil
	}

	var doc notificationDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal notification: %w", err)
	}
	return doc.toDomain(), nil
}
