package export

import (
	"context"
	"errors"
	"fmt"
	"io"

	rdfio "github.com/geoknoesis/rdf-go/rdf"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

// decode streams the statements of r into a new graph.
func decode(ctx context.Context, r io.Reader, format rdfio.Format) (*rdf.Graph, error) {
	g := rdf.NewGraph()
	err := rdfio.Parse(ctx, r, format, func(s rdfio.Statement) error {
		q, err := fromQuad(s.AsQuad())
		if err != nil {
			return err
		}
		g.Add(q)
		return nil
	})
	if err != nil {
		return nil, syntaxError(format, err)
	}
	return g, nil
}

// syntaxError classifies a decoder failure as ErrSyntax unless it is a
// cancellation.
func syntaxError(format rdfio.Format, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrSyntax, format, err)
}

func fromQuad(q rdfio.Quad) (rdf.Quad, error) {
	s, err := fromTerm(q.S)
	if err != nil {
		return rdf.Quad{}, err
	}
	o, err := fromTerm(q.O)
	if err != nil {
		return rdf.Quad{}, err
	}
	var g rdf.Term
	if q.G != nil {
		if g, err = fromTerm(q.G); err != nil {
			return rdf.Quad{}, err
		}
	}
	return rdf.NewQuad(s, rdf.IRI(q.P.Value), o, g), nil
}

// fromTerm maps a decoded term onto the graph model. xsd:string literals
// become plain literals. Quoted triples have no counterpart.
func fromTerm(t rdfio.Term) (rdf.Term, error) {
	switch v := t.(type) {
	case rdfio.IRI:
		return rdf.IRI(v.Value), nil
	case rdfio.BlankNode:
		return rdf.Blank(v.ID), nil
	case rdfio.Literal:
		switch {
		case v.Lang != "":
			return rdf.LangLiteral(v.Lexical, v.Lang), nil
		case v.Datatype.Value == "" || v.Datatype.Value == vocabulary.XSDString:
			return rdf.Literal(v.Lexical), nil
		default:
			return rdf.TypedLiteral(v.Lexical, v.Datatype.Value), nil
		}
	case rdfio.TripleTerm:
		return rdf.Term{}, fmt.Errorf("quoted triple %s is not supported", v)
	case nil:
		return rdf.Term{}, errors.New("missing term")
	default:
		return rdf.Term{}, fmt.Errorf("unsupported term %T", t)
	}
}
