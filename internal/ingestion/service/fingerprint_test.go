package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		rawURL   string
		expected string
	}{
		{
			name:     "drops scheme and lowercases host",
			rawURL:   "HTTPS://Example.com/News/Story",
			expected: "example.com/News/Story",
		},
		{
			name:     "strips trailing slash",
			rawURL:   "https://example.com/news/story/",
			expected: "example.com/news/story",
		},
		{
			name:     "strips fragment",
			rawURL:   "https://example.com/a#section",
			expected: "example.com/a",
		},
		{
			name:     "keeps query string",
			rawURL:   "https://example.com/a?id=1",
			expected: "example.com/a?id=1",
		},
		{
			name:     "schemeless input normalized textually",
			rawURL:   "Example.COM/path/",
			expected: "example.com/path",
		},
		{
			name:     "trims surrounding whitespace",
			rawURL:   "  https://example.com/a  ",
			expected: "example.com/a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.rawURL))
		})
	}
}

func TestFingerprint_StableAcrossURLSpellings(t *testing.T) {
	a := Fingerprint("AAPL", "https://Example.com/news/story/")
	b := Fingerprint("AAPL", "http://example.com/news/story")

	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestFingerprint_DistinctPerTicker(t *testing.T) {
	url := "https://example.com/news/story"

	assert.NotEqual(t, Fingerprint("AAPL", url), Fingerprint("MSFT", url))
}

func TestFingerprint_DistinctPerURL(t *testing.T) {
	assert.NotEqual(t,
		Fingerprint("AAPL", "https://example.com/a"),
		Fingerprint("AAPL", "https://example.com/b"),
	)
}
