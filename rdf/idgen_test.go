package rdf_test

import (
	"strings"
	"testing"

	"github.com/c360studio/semweave/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterGenerator(t *testing.T) {
	g := rdf.NewCounterGenerator("stmt-")
	assert.Equal(t, "stmt-1", g.Next())
	assert.Equal(t, "stmt-2", g.Next())
}

func TestSeededGeneratorReproducible(t *testing.T) {
	a := rdf.NewSeededGenerator("s-", 42)
	b := rdf.NewSeededGenerator("s-", 42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestUUIDGeneratorUnique(t *testing.T) {
	g := rdf.NewUUIDGenerator("u-")
	first, second := g.Next(), g.Next()
	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "u-"))
}

func TestNewGenerator(t *testing.T) {
	for _, kind := range []rdf.GeneratorKind{"", rdf.GeneratorCounter, rdf.GeneratorSeeded, rdf.GeneratorUUID} {
		g, err := rdf.NewGenerator(kind, "x-", 1)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, g.Next())
	}

	_, err := rdf.NewGenerator("random", "x-", 1)
	assert.Error(t, err)
}
