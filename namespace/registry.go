// Package namespace maps short prefixes to absolute namespace bases and
// resolves qualified names and bare labels to absolute identifiers.
//
// Resolution is total: an undeclared prefix never fails, it is folded into a
// label under the fallback namespace. A Registry belongs to a single
// conversion and is not safe for concurrent mutation.
package namespace

import (
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/semweave/vocabulary"
)

var (
	prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	whitespace    = regexp.MustCompile(`\s+`)
	// localPattern is the subset of Turtle PN_LOCAL the serializers emit
	// in prefixed form. Anything else is written as a full IRI.
	localPattern = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)
)

// Prefix is a declared prefix and its base.
type Prefix = vocabulary.Prefix

// Registry is an ordered prefix table.
type Registry struct {
	order        []string
	bases        map[string]string
	fallbackBase string
}

// New creates a registry whose fallback prefix "ex" is bound to
// fallbackBase. An empty fallbackBase selects http://example.org/.
func New(fallbackBase string) *Registry {
	if fallbackBase == "" {
		fallbackBase = vocabulary.ExampleNamespace
	}
	r := &Registry{
		bases:        make(map[string]string),
		fallbackBase: fallbackBase,
	}
	r.Declare(vocabulary.FallbackPrefix, fallbackBase)
	return r
}

// NewWithDefaults creates a registry seeded with the default prefix table
// followed by extra, later entries overwriting earlier ones.
func NewWithDefaults(fallbackBase string, extra ...Prefix) *Registry {
	r := New(fallbackBase)
	for _, p := range vocabulary.DefaultPrefixes() {
		if p.Name == vocabulary.FallbackPrefix {
			continue
		}
		r.Declare(p.Name, p.Base)
	}
	for _, p := range extra {
		r.Declare(p.Name, p.Base)
	}
	return r
}

// ValidPrefix reports whether s is a legal prefix token.
func ValidPrefix(s string) bool {
	return prefixPattern.MatchString(s)
}

// Declare records or overwrites a mapping. It returns false, leaving the
// registry untouched, when the prefix is not a legal token or base is empty.
func (r *Registry) Declare(prefix, base string) bool {
	base = strings.TrimSpace(base)
	if !ValidPrefix(prefix) || base == "" {
		return false
	}
	if _, ok := r.bases[prefix]; !ok {
		r.order = append(r.order, prefix)
	}
	r.bases[prefix] = base
	return true
}

// Lookup returns the base bound to prefix.
func (r *Registry) Lookup(prefix string) (string, bool) {
	base, ok := r.bases[prefix]
	return base, ok
}

// FallbackBase returns the base that bare labels resolve under: the
// currently declared "ex" namespace.
func (r *Registry) FallbackBase() string {
	if base, ok := r.bases[vocabulary.FallbackPrefix]; ok {
		return base
	}
	return r.fallbackBase
}

// Resolve turns an absolute IRI, a qualified name or a bare label into an
// absolute identifier. It never fails.
func (r *Registry) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if IsAbsolute(name) || strings.HasPrefix(name, "_:") {
		return name
	}
	if strings.Count(name, ":") == 1 {
		prefix, local, _ := strings.Cut(name, ":")
		if base, ok := r.bases[prefix]; ok {
			return base + local
		}
	}
	return r.Label(name)
}

// Label resolves a bare label under the fallback base, replacing runs of
// whitespace with underscores.
func (r *Registry) Label(label string) string {
	label = whitespace.ReplaceAllString(strings.TrimSpace(label), "_")
	return r.FallbackBase() + label
}

// Compact returns the prefixed form of iri using the longest matching base.
// It returns false when no base matches or the remaining local part cannot
// be written as a prefixed name.
func (r *Registry) Compact(iri string) (string, bool) {
	prefix, local, ok := r.Split(iri)
	if !ok {
		return "", false
	}
	return prefix + ":" + local, true
}

// Split is Compact returning prefix and local part separately.
func (r *Registry) Split(iri string) (prefix, local string, ok bool) {
	best := -1
	for _, p := range r.order {
		base := r.bases[p]
		if !strings.HasPrefix(iri, base) || len(base) <= best {
			continue
		}
		rest := iri[len(base):]
		if rest != "" && !localPattern.MatchString(rest) {
			continue
		}
		best = len(base)
		prefix, local = p, rest
	}
	return prefix, local, best >= 0
}

// Prefixes returns the declared prefixes in declaration order.
func (r *Registry) Prefixes() []Prefix {
	out := make([]Prefix, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, Prefix{Name: p, Base: r.bases[p]})
	}
	return out
}

// Sorted returns the declared prefixes sorted by name.
func (r *Registry) Sorted() []Prefix {
	out := r.Prefixes()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Map returns a copy of the prefix table.
func (r *Registry) Map() map[string]string {
	m := make(map[string]string, len(r.bases))
	for k, v := range r.bases {
		m[k] = v
	}
	return m
}

// Len returns the number of declared prefixes.
func (r *Registry) Len() int {
	return len(r.order)
}

// Clone returns an independent copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		order:        append([]string(nil), r.order...),
		bases:        r.Map(),
		fallbackBase: r.fallbackBase,
	}
	return c
}

// IsAbsolute reports whether s is already an absolute identifier, that is
// whether it contains "://". Other schemes such as urn: resolve like any
// prefixed name.
func IsAbsolute(s string) bool {
	return strings.Contains(s, "://")
}
