package textfilter

import (
	"testing"
)

func TestAnswerMatcher_Matches(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		input    string
		expected bool
	}{
		{
			name:     "exact answer",
			answer:   "胸腺",
			input:    "胸腺",
			expected: true,
		},
		{
			name:     "answer inside padded sentence",
			answer:   "胸腺",
			input:    " 胸腺 training ",
			expected: true,
		},
		{
			name:     "wrong organ",
			answer:   "胸腺",
			input:    "脾脏",
			expected: false,
		},
		{
			name:     "empty input",
			answer:   "胸腺",
			input:    "   ",
			expected: false,
		},
		{
			name:     "case folded",
			answer:   "Thymus",
			input:    "in the THYMUS, obviously",
			expected: true,
		},
		{
			name:     "answer split by whitespace is not normalized",
			answer:   "胸腺",
			input:    "胸 腺",
			expected: false,
		},
		{
			name:     "empty answer never matches",
			answer:   "",
			input:    "anything",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAnswerMatcher(tt.answer)
			if got := m.Matches(tt.input); got != tt.expected {
				t.Errorf("Matches(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			if got := ContainsAnswer(tt.input, tt.answer); got != tt.expected {
				t.Errorf("ContainsAnswer(%q, %q) = %v, want %v", tt.input, tt.answer, got, tt.expected)
			}
		})
	}
}
