package services

import "strings"

// InsightLexicon carries the word lists used by the word-cloud generator and
// the rule-based sentiment classifier. It is plain injected configuration so
// tests and callers can override the defaults.
type InsightLexicon struct {
	StopWords     []string
	PositiveWords []string
	NegativeWords []string
}

// DefaultLexicon returns the built-in English word lists.
func DefaultLexicon() InsightLexicon {
	return InsightLexicon{
		StopWords: []string{
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
			"for", "of", "with", "is", "was", "are", "were", "been", "be",
			"have", "has", "had", "do", "does", "did", "will", "would",
			"could", "should", "it", "this", "that", "these", "those",
		},
		PositiveWords: []string{
			"good", "great", "excellent", "amazing", "love", "loved",
			"helpful", "easy", "awesome", "fantastic", "wonderful",
			"satisfied", "happy", "clear", "useful", "perfect", "best",
			"enjoy", "enjoyed", "nice", "smooth", "intuitive", "friendly",
		},
		NegativeWords: []string{
			"bad", "poor", "terrible", "awful", "hate", "hated",
			"difficult", "confusing", "slow", "frustrating", "frustrated",
			"disappointing", "disappointed", "broken", "worst", "annoying",
			"useless", "unclear", "hard", "problem", "problems", "buggy",
			"boring", "complicated",
		},
	}
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
