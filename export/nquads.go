package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/c360studio/semweave/rdf"
)

func writeNQuads(w io.Writer, g *rdf.Graph) error {
	qw := nquads.NewWriter(w)
	for _, q := range g.Quads() {
		if err := qw.WriteQuad(toQuad(q)); err != nil {
			return err
		}
	}
	return qw.Close()
}

// ParseNQuads reads N-Quads (or N-Triples) into a graph.
func ParseNQuads(r io.Reader) (*rdf.Graph, error) {
	qr := nquads.NewReader(r, false)
	defer qr.Close()

	g := rdf.NewGraph()
	for {
		q, err := qr.ReadQuad()
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: n-quads: %v", ErrSyntax, err)
		}
		g.Add(rdf.NewQuad(
			fromValue(q.Subject),
			fromValue(q.Predicate),
			fromValue(q.Object),
			fromValue(q.Label),
		))
	}
}

func toQuad(q rdf.Quad) quad.Quad {
	return quad.Quad{
		Subject:   toValue(q.Subject),
		Predicate: toValue(q.Predicate),
		Object:    toValue(q.Object),
		Label:     toValue(q.Graph),
	}
}

func toValue(t rdf.Term) quad.Value {
	switch t.Kind {
	case rdf.KindIRI:
		return quad.IRI(t.Value)
	case rdf.KindBlank:
		return quad.BNode(t.Value)
	case rdf.KindLiteral:
		switch {
		case t.Lang != "":
			return quad.LangString{Value: quad.String(t.Value), Lang: t.Lang}
		case t.Datatype != "":
			return quad.TypedString{Value: quad.String(t.Value), Type: quad.IRI(t.Datatype)}
		default:
			return quad.String(t.Value)
		}
	default:
		return nil
	}
}

func fromValue(v quad.Value) rdf.Term {
	switch val := v.(type) {
	case nil:
		return rdf.Term{}
	case quad.IRI:
		return rdf.IRI(string(val))
	case quad.BNode:
		return rdf.Blank(string(val))
	case quad.String:
		return rdf.Literal(string(val))
	case quad.LangString:
		return rdf.LangLiteral(string(val.Value), val.Lang)
	case quad.TypedString:
		return rdf.TypedLiteral(string(val.Value), string(val.Type))
	case quad.TypedStringer:
		ts := val.TypedString()
		return rdf.TypedLiteral(string(ts.Value), string(ts.Type))
	default:
		return rdf.Literal(fmt.Sprint(v.Native()))
	}
}
