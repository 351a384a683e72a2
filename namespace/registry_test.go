package namespace_test

import (
	"testing"

	"github.com/c360studio/semweave/namespace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	r := namespace.New("")
	require.True(t, r.Declare("foaf", "http://xmlns.com/foaf/0.1/"))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"absolute unchanged", "http://example.com/thing", "http://example.com/thing"},
		{"urn without authority is a label", "urn:isbn:0451450523", "http://example.org/urn:isbn:0451450523"},
		{"undeclared mailto is a label", "mailto:a@b.org", "http://example.org/mailto:a@b.org"},
		{"blank node unchanged", "_:b1", "_:b1"},
		{"declared prefix", "foaf:name", "http://xmlns.com/foaf/0.1/name"},
		{"fallback prefix", "ex:Doc", "http://example.org/Doc"},
		{"bare label", "Doc", "http://example.org/Doc"},
		{"label with spaces", "My  Document", "http://example.org/My_Document"},
		{"unknown prefix folds into label", "zz:Thing", "http://example.org/zz:Thing"},
		{"two colons is a label", "a:b:c", "http://example.org/a:b:c"},
		{"surrounding space trimmed", "  foaf:knows ", "http://xmlns.com/foaf/0.1/knows"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

func TestResolveDeclaredSchemePrefix(t *testing.T) {
	r := namespace.New("")
	require.True(t, r.Declare("urn", "urn:isbn:"))
	require.True(t, r.Declare("mailto", "https://people.example.org/"))

	assert.Equal(t, "urn:isbn:0451450523", r.Resolve("urn:0451450523"))
	assert.Equal(t, "https://people.example.org/alice", r.Resolve("mailto:alice"))
}

func TestIsAbsolute(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"http://example.org/x", true},
		{"file:///tmp/x", true},
		{"urn:isbn:0451450523", false},
		{"mailto:a@b.org", false},
		{"ex:Thing", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, namespace.IsAbsolute(tt.input))
		})
	}
}

func TestResolveIdempotentOnAbsolute(t *testing.T) {
	r := namespace.New("")
	iri := r.Resolve("ex:Thing")
	assert.Equal(t, iri, r.Resolve(iri))
	assert.Equal(t, iri, r.Resolve(r.Resolve(iri)))
}

func TestResolveFallbackDeterministic(t *testing.T) {
	r := namespace.New("")
	assert.Equal(t, r.Resolve("nope:X"), r.Resolve("nope:X"))
}

func TestDeclareOverwrites(t *testing.T) {
	r := namespace.New("")
	r.Declare("ex", "http://a.org/")
	assert.Equal(t, "http://a.org/X", r.Resolve("ex:X"))

	r.Declare("ex", "http://b.org/")
	assert.Equal(t, "http://b.org/X", r.Resolve("ex:X"))
	assert.Equal(t, "http://b.org/Label", r.Resolve("Label"), "bare labels follow the redeclared ex base")
	assert.Equal(t, 1, r.Len())
}

func TestDeclareRejectsInvalidPrefix(t *testing.T) {
	r := namespace.New("")
	assert.False(t, r.Declare("bad prefix", "http://x.org/"))
	assert.False(t, r.Declare("ok", ""))
	_, ok := r.Lookup("bad prefix")
	assert.False(t, ok)
}

func TestCompactLongestBase(t *testing.T) {
	r := namespace.New("")
	r.Declare("doc", "http://example.org/doc/")

	got, ok := r.Compact("http://example.org/doc/Report")
	require.True(t, ok)
	assert.Equal(t, "doc:Report", got)

	got, ok = r.Compact("http://example.org/Person")
	require.True(t, ok)
	assert.Equal(t, "ex:Person", got)

	_, ok = r.Compact("http://other.org/x")
	assert.False(t, ok)

	_, ok = r.Compact("http://example.org/has space")
	assert.False(t, ok, "local parts that are not valid names stay absolute")
}

func TestCompactInvertsResolve(t *testing.T) {
	r := namespace.NewWithDefaults("")
	for _, name := range []string{"ex:Doc", "rdf:type", "owl:Class", "doc:author"} {
		got, ok := r.Compact(r.Resolve(name))
		require.True(t, ok, name)
		assert.Equal(t, name, got)
	}
}

func TestPrefixesOrderAndClone(t *testing.T) {
	r := namespace.New("")
	r.Declare("b", "http://b/")
	r.Declare("a", "http://a/")

	names := []string{}
	for _, p := range r.Prefixes() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"ex", "b", "a"}, names)
	assert.Equal(t, "a", r.Sorted()[0].Name)

	c := r.Clone()
	c.Declare("c", "http://c/")
	_, ok := r.Lookup("c")
	assert.False(t, ok, "clone must not share state")
}
