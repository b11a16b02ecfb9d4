package domain

import (
	"strings"
	"unicode/utf8"
)

// EmbeddingDim is the dimensionality of all embedding vectors in the system.
const EmbeddingDim = 384

// MaxEmbeddingChars caps text sent to embedding and classification models.
const MaxEmbeddingChars = 500

// HemophiliaType is the primary clinical category of a profile.
type HemophiliaType string

// SeverityLevel is the clinical severity tier of a profile.
type SeverityLevel string

const (
	TypeA         HemophiliaType = "a"
	TypeB         HemophiliaType = "b"
	TypeC         HemophiliaType = "c"
	TypeVWD       HemophiliaType = "vwd"
	TypeOther     HemophiliaType = "other"
	TypeCarrier   HemophiliaType = "carrier"
	TypeCaregiver HemophiliaType = "caregiver"

	SeverityMild     SeverityLevel = "mild"
	SeverityModerate SeverityLevel = "moderate"
	SeveritySevere   SeverityLevel = "severe"
)

// hemophiliaTypeLabels are the display labels used when composing embedding
// text; richer text gives better semantic match quality.
var hemophiliaTypeLabels = map[HemophiliaType]string{
	TypeA:         "Hemophilia A (Factor VIII)",
	TypeB:         "Hemophilia B (Factor IX)",
	TypeC:         "Hemophilia C (Factor XI)",
	TypeVWD:       "Von Willebrand Disease",
	TypeOther:     "Other bleeding disorder",
	TypeCarrier:   "Carrier",
	TypeCaregiver: "Caregiver / Family Member",
}

var severityLabels = map[SeverityLevel]string{
	SeverityMild:     "Mild",
	SeverityModerate: "Moderate",
	SeveritySevere:   "Severe",
}

// Profile is a community member profile as seen by the pipeline.
// Embedding may be nil when the inference service was unavailable at write
// time; consumers must treat absence as a missing feature, never an error.
type Profile struct {
	ID              string
	FirstName       string
	LastName        string
	HemophiliaType  HemophiliaType
	SeverityLevel   SeverityLevel
	Treatment       string
	LifeStage       string
	Topics          []string
	Bio             string
	Visible         bool
	MatchingEnabled bool
	Embedding       []float32
}

// EmbeddingText composes a natural-language string from profile fields for
// embedding, truncated to MaxEmbeddingChars.
func (p Profile) EmbeddingText() string {
	var parts []string

	if label, ok := hemophiliaTypeLabels[p.HemophiliaType]; ok {
		parts = append(parts, "Hemophilia Type: "+label)
	}
	if label, ok := severityLabels[p.SeverityLevel]; ok {
		parts = append(parts, "Severity: "+label)
	}
	if p.Treatment != "" {
		parts = append(parts, "Treatment: "+p.Treatment)
	}
	if p.LifeStage != "" {
		parts = append(parts, "Life Stage: "+strings.ReplaceAll(p.LifeStage, "-", " "))
	}
	if len(p.Topics) > 0 {
		parts = append(parts, "Interests: "+strings.Join(p.Topics, ", "))
	}
	if p.Bio != "" {
		parts = append(parts, "Bio: "+p.Bio)
	}

	return Truncate(strings.Join(parts, ". "), MaxEmbeddingChars)
}

// Truncate cuts s to at most n bytes without splitting a rune, so the
// result is always valid UTF-8. Truncation is silent by contract:
// oversized inputs are a normal condition, not an error.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
