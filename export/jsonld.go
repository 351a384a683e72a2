package export

import (
	"encoding/json"
	"io"

	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]string `json:"@context"`
	Graph   []JSONLDNode      `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph. A node whose identifier
// labels a named graph carries that graph's nodes in Graph.
type JSONLDNode struct {
	ID         string
	Type       []string
	Properties map[string][]any
	Graph      []JSONLDNode
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
// Single-valued properties are written as scalars.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+3)
	m["@id"] = n.ID
	switch len(n.Type) {
	case 0:
	case 1:
		m["@type"] = n.Type[0]
	default:
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		if len(v) == 1 {
			m[k] = v[0]
		} else {
			m[k] = v
		}
	}
	if len(n.Graph) > 0 {
		m["@graph"] = n.Graph
	}
	return json.Marshal(m)
}

// JSONLDWriter builds a JSON-LD document from a graph.
type JSONLDWriter struct {
	reg *namespace.Registry
	doc JSONLDDocument
}

// NewJSONLDWriter creates a writer whose @context is the full prefix
// table of reg.
func NewJSONLDWriter(reg *namespace.Registry) *JSONLDWriter {
	return &JSONLDWriter{
		reg: reg,
		doc: JSONLDDocument{
			Context: reg.Map(),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// AddGraph appends one node per subject of the default graph, in first
// appearance order. Each named graph becomes the "@graph" of the node
// named by its label, which is created when the label has no
// default-graph statements of its own.
func (w *JSONLDWriter) AddGraph(g *rdf.Graph) {
	var zero rdf.Term
	seen := make(map[rdf.Term]struct{})
	for _, s := range g.Subjects(zero) {
		node := w.node(g, s, zero)
		node.Graph = w.nodes(g, s)
		seen[s] = struct{}{}
		w.doc.Graph = append(w.doc.Graph, node)
	}
	for _, label := range g.GraphLabels() {
		if _, ok := seen[label]; ok {
			continue
		}
		w.doc.Graph = append(w.doc.Graph, JSONLDNode{ID: w.ref(label), Graph: w.nodes(g, label)})
	}
}

// nodes returns the nodes of the named graph, nil for a term that labels
// no graph.
func (w *JSONLDWriter) nodes(g *rdf.Graph, graph rdf.Term) []JSONLDNode {
	var out []JSONLDNode
	for _, s := range g.Subjects(graph) {
		out = append(out, w.node(g, s, graph))
	}
	return out
}

func (w *JSONLDWriter) node(g *rdf.Graph, subject, graph rdf.Term) JSONLDNode {
	node := JSONLDNode{ID: w.ref(subject), Properties: make(map[string][]any)}
	for _, q := range g.Match(rdf.Pattern{Subject: &subject, Graph: &graph}) {
		if q.Predicate.Value == vocabulary.RDFType && q.Object.IsResource() {
			node.Type = append(node.Type, w.ref(q.Object))
			continue
		}
		key := w.ref(q.Predicate)
		node.Properties[key] = append(node.Properties[key], w.value(q.Object))
	}
	return node
}

func (w *JSONLDWriter) ref(t rdf.Term) string {
	if t.IsBlank() {
		return "_:" + t.Value
	}
	if c, ok := w.reg.Compact(t.Value); ok {
		return c
	}
	return t.Value
}

func (w *JSONLDWriter) value(t rdf.Term) any {
	switch {
	case t.IsResource():
		return map[string]string{"@id": w.ref(t)}
	case t.Lang != "":
		return map[string]string{"@value": t.Value, "@language": t.Lang}
	case t.Datatype != "":
		return map[string]string{"@value": t.Value, "@type": w.ref(rdf.IRI(t.Datatype))}
	default:
		return t.Value
	}
}

// Document returns the assembled document.
func (w *JSONLDWriter) Document() *JSONLDDocument {
	return &w.doc
}

// WriteTo writes the document as indented JSON.
func (w *JSONLDWriter) WriteTo(out io.Writer) (int64, error) {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := out.Write(data)
	return int64(n), err
}

func writeJSONLD(out io.Writer, g *rdf.Graph, reg *namespace.Registry) error {
	w := NewJSONLDWriter(reg)
	w.AddGraph(g)
	_, err := w.WriteTo(out)
	return err
}
