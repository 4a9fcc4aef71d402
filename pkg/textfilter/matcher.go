package textfilter

import (
	"strings"

	"golang.org/x/text/cases"
)

// AnswerMatcher checks free-text answers against a fixed expected fragment.
// An input is correct when, after trimming, it contains the fragment. The
// comparison folds case and does no other normalization.
type AnswerMatcher struct {
	answer string
}

// NewAnswerMatcher creates a matcher for the expected fragment.
func NewAnswerMatcher(answer string) *AnswerMatcher {
	return &AnswerMatcher{answer: fold(strings.TrimSpace(answer))}
}

// Matches reports whether input contains the expected fragment.
// An empty expected fragment never matches.
func (m *AnswerMatcher) Matches(input string) bool {
	if m.answer == "" {
		return false
	}
	return strings.Contains(fold(strings.TrimSpace(input)), m.answer)
}

// ContainsAnswer is a one-shot form of AnswerMatcher.Matches.
func ContainsAnswer(input, answer string) bool {
	return NewAnswerMatcher(answer).Matches(input)
}

// Casers keep state between calls, so each fold gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
