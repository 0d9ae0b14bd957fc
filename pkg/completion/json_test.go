package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare json untouched",
			input:    `{"a": 1}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "json code fence stripped",
			input:    "```json\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "plain fence stripped",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "prose around braces trimmed",
			input:    `Here is your result: {"a": 1} hope that helps!`,
			expected: `{"a": 1}`,
		},
		{
			name:     "nested braces kept intact",
			input:    `{"outer": {"inner": 2}}`,
			expected: `{"outer": {"inner": 2}}`,
		},
		{
			name:     "broken json is returned as-is, not repaired",
			input:    `{"a": 1,}`,
			expected: `{"a": 1,}`,
		},
		{
			name:     "no braces passes through",
			input:    "just some text",
			expected: "just some text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractJSON(tt.input))
		})
	}
}
