package domain

// LabelScore is a single (label, score) pair from a classification model.
type LabelScore struct {
	Label string
	Score float64
}

// ModerationVerdict is the outcome of a toxicity check. A nil verdict means
// the service was unavailable and content must be allowed through.
// IsToxic reflects the model's "toxic" label only.
type ModerationVerdict struct {
	IsToxic bool
	Labels  []LabelScore // ordered as returned by the model
}
