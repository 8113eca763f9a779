package scoring

import (
	"strings"
)

// aspectVocabulary is the fixed set of topics the models score sentiment and
// bias against. Entries are lowercase and unique; detection order follows
// this order.
var aspectVocabulary = []string{
	"teacher",
	"professor",
	"course",
	"style",
	"lecture",
	"class",
	"environment",
	"experience",
	"man",
	"woman",
	"test",
	"exam",
	"assignment",
	"material",
	"effort",
	"comprehension",
	"grade",
	"grading",
	"notes",
	"diagram",
	"expectation",
	"textbook",
}

// DetectAspects returns the vocabulary aspects mentioned in text, using a
// case-insensitive substring match. The result is empty when no aspect
// occurs.
func DetectAspects(text string) []string {
	lowered := strings.ToLower(text)
	var detected []string
	for _, aspect := range aspectVocabulary {
		if strings.Contains(lowered, aspect) {
			detected = append(detected, aspect)
		}
	}
	return detected
}
