package builder

import (
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

// Property is one predicate/value pair of an entity.
type Property struct {
	Predicate string
	Value     rdf.Term
}

// Entity is a resolved typed-entity declaration. Redeclaring the same
// identifier merges into the existing entity.
type Entity struct {
	ID         string
	Type       string
	Properties []Property
}

// Get returns the value stored for predicate.
func (e *Entity) Get(predicate string) (rdf.Term, bool) {
	for _, p := range e.Properties {
		if p.Predicate == predicate {
			return p.Value, true
		}
	}
	return rdf.Term{}, false
}

// Set stores value under predicate, replacing any earlier value in place.
func (e *Entity) Set(predicate string, value rdf.Term) {
	for i := range e.Properties {
		if e.Properties[i].Predicate == predicate {
			e.Properties[i].Value = value
			return
		}
	}
	e.Properties = append(e.Properties, Property{Predicate: predicate, Value: value})
}

// Quads returns the entity's triples: the type assertion first, then one
// triple per property.
func (e *Entity) Quads() []rdf.Quad {
	subject := rdf.IRI(e.ID)
	out := make([]rdf.Quad, 0, len(e.Properties)+1)
	if e.Type != "" {
		out = append(out, rdf.NewTriple(subject, rdf.IRI(vocabulary.RDFType), rdf.IRI(e.Type)))
	}
	for _, p := range e.Properties {
		out = append(out, rdf.NewTriple(subject, rdf.IRI(p.Predicate), p.Value))
	}
	return out
}
