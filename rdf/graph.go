package rdf

// Triple is a subject/predicate/object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Quad is a triple tagged with a graph label. A zero Graph places the
// statement in the default graph.
type Quad struct {
	Triple
	Graph Term
}

// NewTriple builds a default-graph quad.
func NewTriple(s, p, o Term) Quad {
	return Quad{Triple: Triple{Subject: s, Predicate: p, Object: o}}
}

// NewQuad builds a quad in the named graph g.
func NewQuad(s, p, o, g Term) Quad {
	return Quad{Triple: Triple{Subject: s, Predicate: p, Object: o}, Graph: g}
}

// InDefaultGraph reports whether the quad carries no graph label.
func (q Quad) InDefaultGraph() bool { return q.Graph.IsZero() }

// String renders the quad as an N-Quads line without the trailing newline.
func (q Quad) String() string {
	s := q.Subject.String() + " " + q.Predicate.String() + " " + q.Object.String()
	if !q.Graph.IsZero() {
		s += " " + q.Graph.String()
	}
	return s + " ."
}

// Pattern selects quads; nil fields match anything. A non-nil zero Graph
// term restricts matches to the default graph.
type Pattern struct {
	Subject   *Term
	Predicate *Term
	Object    *Term
	Graph     *Term
}

// Matches reports whether q satisfies the pattern.
func (p Pattern) Matches(q Quad) bool {
	if p.Subject != nil && *p.Subject != q.Subject {
		return false
	}
	if p.Predicate != nil && *p.Predicate != q.Predicate {
		return false
	}
	if p.Object != nil && *p.Object != q.Object {
		return false
	}
	if p.Graph != nil && *p.Graph != q.Graph {
		return false
	}
	return true
}

// Graph is an insertion-ordered set of quads. Adding a quad that is
// already present is a no-op.
type Graph struct {
	quads []Quad
	index map[Quad]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[Quad]struct{})}
}

// Add inserts q and reports whether it was new.
func (g *Graph) Add(q Quad) bool {
	if _, ok := g.index[q]; ok {
		return false
	}
	g.index[q] = struct{}{}
	g.quads = append(g.quads, q)
	return true
}

// AddTriple inserts a default-graph statement.
func (g *Graph) AddTriple(s, p, o Term) bool {
	return g.Add(NewTriple(s, p, o))
}

// AddAll inserts every quad of other.
func (g *Graph) AddAll(other *Graph) {
	for _, q := range other.quads {
		g.Add(q)
	}
}

// Contains reports whether q is present.
func (g *Graph) Contains(q Quad) bool {
	_, ok := g.index[q]
	return ok
}

// Len returns the number of quads.
func (g *Graph) Len() int { return len(g.quads) }

// Quads returns the quads in insertion order. The slice must not be modified.
func (g *Graph) Quads() []Quad { return g.quads }

// Match returns the quads satisfying p in insertion order.
func (g *Graph) Match(p Pattern) []Quad {
	var out []Quad
	for _, q := range g.quads {
		if p.Matches(q) {
			out = append(out, q)
		}
	}
	return out
}

// Triples returns the distinct triples, dropping graph labels.
func (g *Graph) Triples() []Triple {
	seen := make(map[Triple]struct{}, len(g.quads))
	out := make([]Triple, 0, len(g.quads))
	for _, q := range g.quads {
		if _, ok := seen[q.Triple]; ok {
			continue
		}
		seen[q.Triple] = struct{}{}
		out = append(out, q.Triple)
	}
	return out
}

// Subjects returns the distinct subjects of quads in graph, in first-seen
// order. Pass a zero term for the default graph.
func (g *Graph) Subjects(graph Term) []Term {
	seen := make(map[Term]struct{})
	var out []Term
	for _, q := range g.quads {
		if q.Graph != graph {
			continue
		}
		if _, ok := seen[q.Subject]; ok {
			continue
		}
		seen[q.Subject] = struct{}{}
		out = append(out, q.Subject)
	}
	return out
}

// GraphLabels returns the distinct named-graph labels in first-seen order.
func (g *Graph) GraphLabels() []Term {
	seen := make(map[Term]struct{})
	var out []Term
	for _, q := range g.quads {
		if q.Graph.IsZero() {
			continue
		}
		if _, ok := seen[q.Graph]; ok {
			continue
		}
		seen[q.Graph] = struct{}{}
		out = append(out, q.Graph)
	}
	return out
}

// Equal reports quad-set equality, graph labels included.
func (g *Graph) Equal(other *Graph) bool {
	if g.Len() != other.Len() {
		return false
	}
	for _, q := range g.quads {
		if !other.Contains(q) {
			return false
		}
	}
	return true
}

// TripleSetEqual reports equality of the triple sets, ignoring graph labels.
func (g *Graph) TripleSetEqual(other *Graph) bool {
	a, b := g.Triples(), other.Triples()
	if len(a) != len(b) {
		return false
	}
	set := make(map[Triple]struct{}, len(b))
	for _, t := range b {
		set[t] = struct{}{}
	}
	for _, t := range a {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
