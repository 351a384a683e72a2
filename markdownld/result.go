package markdownld

import (
	"io"

	"github.com/c360studio/semweave/builder"
	"github.com/c360studio/semweave/constraint"
	"github.com/c360studio/semweave/document"
	"github.com/c360studio/semweave/export"
	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/scanner"
)

// Result is one converted document.
type Result struct {
	// Path is set when the document was read from a file.
	Path string

	Document    *document.Document
	Statements  []scanner.Statement
	Diagnostics []scanner.Diagnostic
	Mode        scanner.Mode

	Graph    *rdf.Graph
	Entities []*builder.Entity
	Registry *namespace.Registry

	Constraints []constraint.Constraint
}

// Serialize renders the graph in format using the document's prefixes.
func (r *Result) Serialize(format export.Format) (string, error) {
	return export.Serialize(r.Graph, r.Registry, format)
}

// Write writes the graph to w in format.
func (r *Result) Write(w io.Writer, format export.Format) error {
	return export.Write(w, r.Graph, r.Registry, format)
}

// Turtle renders the graph as Turtle.
func (r *Result) Turtle() (string, error) {
	return r.Serialize(export.FormatTurtle)
}

// JSONLD renders the graph as JSON-LD.
func (r *Result) JSONLD() (string, error) {
	return r.Serialize(export.FormatJSONLD)
}
