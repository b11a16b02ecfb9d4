package domain

// InterestTopics is the fixed candidate-label set for zero-shot
// auto-tagging and the topic vocabulary for profiles.
var InterestTopics = []string{
	"Joint Health",
	"Prophylaxis",
	"Travel",
	"Exercise",
	"Parenting",
	"Mental Health",
	"Diet & Nutrition",
	"Gene Therapy",
	"Insurance",
	"School / Work",
}
