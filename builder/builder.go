// Package builder turns scanned statements into entities and an RDF graph.
package builder

import (
	"log/slog"

	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/scanner"
)

// TypeKey is the reserved attribute consumed into an entity's type.
const TypeKey = "typeof"

// DefaultIDPrefix prefixes counter-generated reification names.
const DefaultIDPrefix = "stmt-"

// Result is the graph built from one document.
type Result struct {
	// Graph holds entity triples in first-declaration order followed by
	// reified quads and their annotations.
	Graph *rdf.Graph

	// Entities in first-declaration order.
	Entities []*Entity

	// Registry is the namespace state after the last statement.
	Registry *namespace.Registry
}

// Entity returns the entity with the given resolved identifier.
func (r *Result) Entity(id string) (*Entity, bool) {
	for _, e := range r.Entities {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Builder resolves statements against a namespace registry.
type Builder struct {
	registry *namespace.Registry
	ids      rdf.IDGenerator
	logger   *slog.Logger
}

// New creates a builder. The registry is cloned per Build call so one
// builder can serve several documents. A nil ids uses a counter.
func New(registry *namespace.Registry, ids rdf.IDGenerator, logger *slog.Logger) *Builder {
	if registry == nil {
		registry = namespace.New("")
	}
	if ids == nil {
		ids = rdf.NewCounterGenerator(DefaultIDPrefix)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{registry: registry, ids: ids, logger: logger}
}

// reification is a reified statement resolved at its position in the
// document. Its context label is allocated once all entities are known.
type reification struct {
	subject, predicate, object rdf.Term
	keys                       []rdf.Term
	values                     []rdf.Term
	fallbackBase               string
}

// Build applies statements in order. Namespace declarations affect only
// the statements after them. It never fails.
func (b *Builder) Build(statements []scanner.Statement) *Result {
	reg := b.registry.Clone()
	byID := make(map[string]*Entity)
	res := &Result{Graph: rdf.NewGraph(), Registry: reg}
	var reified []reification

	for _, st := range statements {
		switch st.Kind {
		case scanner.KindNamespace:
			reg.Declare(st.Namespace.Prefix, st.Namespace.Base)

		case scanner.KindEntity:
			id := reg.Resolve(st.Entity.Label)
			ent, ok := byID[id]
			if !ok {
				ent = &Entity{ID: id}
				byID[id] = ent
				res.Entities = append(res.Entities, ent)
			}
			b.applyAttrs(reg, ent, st.Entity.Attrs)

		case scanner.KindReified:
			reified = append(reified, resolveReified(reg, st.Reified))
		}
	}

	for _, ent := range res.Entities {
		for _, q := range ent.Quads() {
			res.Graph.Add(q)
		}
	}
	taken := make(map[string]struct{}, len(byID))
	for id := range byID {
		taken[id] = struct{}{}
	}
	for _, r := range reified {
		g := b.freshLabel(r.fallbackBase, taken)
		res.Graph.Add(rdf.NewQuad(r.subject, r.predicate, r.object, g))
		for i, key := range r.keys {
			res.Graph.Add(rdf.NewTriple(g, key, r.values[i]))
		}
	}

	b.logger.Debug("Built graph",
		"entities", len(res.Entities),
		"reified", len(reified),
		"quads", res.Graph.Len())

	return res
}

func (b *Builder) applyAttrs(reg *namespace.Registry, ent *Entity, attrs []scanner.Attr) {
	for _, a := range attrs {
		if a.Key == TypeKey {
			ent.Type = reg.Resolve(a.Value)
			continue
		}
		var value rdf.Term
		if a.Quoted {
			value = rdf.Literal(a.Value)
		} else {
			value = rdf.IRI(reg.Resolve(a.Value))
		}
		ent.Set(reg.Resolve(a.Key), value)
	}
}

// resolveReified resolves a reified statement against the current
// namespace state. Annotation values are always literals.
func resolveReified(reg *namespace.Registry, d *scanner.ReifiedDecl) reification {
	r := reification{
		subject:      rdf.IRI(reg.Resolve(d.Subject)),
		predicate:    rdf.IRI(reg.Resolve(d.Predicate)),
		object:       rdf.IRI(reg.Resolve(d.Object)),
		fallbackBase: reg.FallbackBase(),
	}
	for _, a := range d.Annotations {
		r.keys = append(r.keys, rdf.IRI(reg.Resolve(a.Key)))
		r.values = append(r.values, rdf.Literal(a.Value))
	}
	return r
}

// freshLabel names a statement context under base, skipping names already
// used by an entity or an earlier context.
func (b *Builder) freshLabel(base string, taken map[string]struct{}) rdf.Term {
	for {
		id := base + b.ids.Next()
		if _, ok := taken[id]; !ok {
			taken[id] = struct{}{}
			return rdf.IRI(id)
		}
		b.logger.Debug("Skipped reification id in use", "id", id)
	}
}
