package vocabulary_test

import (
	"testing"

	"github.com/c360studio/semweave/vocabulary"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPrefixes(t *testing.T) {
	prefixes := vocabulary.DefaultPrefixes()
	assert.Equal(t, vocabulary.FallbackPrefix, prefixes[0].Name, "fallback prefix must be declared first")

	seen := make(map[string]bool)
	for _, p := range prefixes {
		assert.False(t, seen[p.Name], "duplicate prefix %q", p.Name)
		seen[p.Name] = true
		assert.NotEmpty(t, p.Base)
	}
}

func TestWellKnownPrefixesExtendDefaults(t *testing.T) {
	defaults := vocabulary.DefaultPrefixes()
	known := vocabulary.WellKnownPrefixes()
	assert.Greater(t, len(known), len(defaults))
	assert.Equal(t, defaults, known[:len(defaults)])
}
