package profile

import "github.com/hemoconnect/hemoconnect/internal/domain"

// profileDoc is the stored JSON shape. Boolean flags are stored as "true"
// or "false" strings so they can back TAG index fields.
type profileDoc struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	HemophiliaType string    `json:"hemophilia_type"`
	SeverityLevel  string    `json:"severity"`
	Treatment      string    `json:"treatment,omitempty"`
	LifeStage      string    `json:"life_stage,omitempty"`
	Topics         []string  `json:"topics,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Visible        string    `json:"visible"`
	Matching       string    `json:"matching"`
	Embedding      []float32 `json:"embedding,omitempty"`
}

func buildDoc(p *domain.Profile) *profileDoc {
	return &profileDoc{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		HemophiliaType: string(p.HemophiliaType),
		SeverityLevel:  string(p.SeverityLevel),
		Treatment:      p.Treatment,
		LifeStage:      p.LifeStage,
		Topics:         p.Topics,
		Bio:            p.Bio,
		Visible:        boolTag(p.Visible),
		Matching:       boolTag(p.MatchingEnabled),
		Embedding:      p.Embedding,
	}
}

func (d *profileDoc) toDomain() *domain.Profile {
	return &domain.Profile{
		ID:              d.ID,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		HemophiliaType:  domain.HemophiliaType(d.HemophiliaType),
		SeverityLevel:   domain.SeverityLevel(d.SeverityLevel),
		Treatment:       d.Treatment,
		LifeStage:       d.LifeStage,
		Topics:          d.Topics,
		Bio:             d.Bio,
		Visible:         d.Visible == "true",
		MatchingEnabled: d.Matching == "true",
		Embedding:       d.Embedding,
	}
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
