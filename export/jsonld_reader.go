package export

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	rdfio "github.com/geoknoesis/rdf-go/rdf"

	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
)

// offlineLoader refuses remote contexts so reading never touches the
// network.
type offlineLoader struct{}

func (offlineLoader) LoadDocument(_ context.Context, iri string) (rdfio.RemoteDocument, error) {
	return rdfio.RemoteDocument{}, fmt.Errorf("remote context %s is not loaded", iri)
}

// ParseJSONLD parses a JSON-LD document. Nodes nested under a node's
// "@graph" are placed in the graph named by that node. Blank node labels
// are reissued by the processor.
func ParseJSONLD(data []byte) (*rdf.Graph, *namespace.Registry, error) {
	return ParseJSONLDContext(context.Background(), data)
}

// ParseJSONLDContext is ParseJSONLD with cancellation.
func ParseJSONLDContext(ctx context.Context, data []byte) (*rdf.Graph, *namespace.Registry, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: json-ld: %v", ErrSyntax, err)
	}

	reg := namespace.New("")
	collectContexts(doc, reg)

	quads, err := rdfio.NewJSONLDProcessor().ToRDF(ctx, doc, rdfio.JSONLDOptions{
		Context:        ctx,
		DocumentLoader: offlineLoader{},
	})
	if err != nil {
		return nil, nil, syntaxError(rdfio.FormatJSONLD, err)
	}

	g := rdf.NewGraph()
	for _, q := range quads {
		quad, err := fromQuad(q)
		if err != nil {
			return nil, nil, syntaxError(rdfio.FormatJSONLD, err)
		}
		g.Add(quad)
	}
	return g, reg, nil
}

// collectContexts declares the prefix-like entries of every inline
// @context on the top-level nodes and their nested graphs.
func collectContexts(v any, reg *namespace.Registry) {
	switch n := v.(type) {
	case []any:
		for _, item := range n {
			collectContexts(item, reg)
		}
	case map[string]any:
		declareContext(n["@context"], reg)
		if inner, ok := n["@graph"]; ok {
			collectContexts(inner, reg)
		}
	}
}

// declareContext records entries whose IRI ends in '/', '#' or ':'. Term
// definitions naming a single property are left out.
func declareContext(ctx any, reg *namespace.Registry) {
	switch c := ctx.(type) {
	case []any:
		for _, item := range c {
			declareContext(item, reg)
		}
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			base, ok := c[k].(string)
			if !ok || strings.HasPrefix(k, "@") {
				continue
			}
			if strings.HasSuffix(base, "/") || strings.HasSuffix(base, "#") || strings.HasSuffix(base, ":") {
				reg.Declare(k, base)
			}
		}
	}
}
