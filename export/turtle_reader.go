package export

import (
	"context"
	"regexp"
	"strings"

	rdfio "github.com/geoknoesis/rdf-go/rdf"

	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
)

var prefixDirective = regexp.MustCompile(`(?mi)^\s*@?prefix\s+([^\s:]*):\s*<([^>]*)>`)

// ParseTurtle parses a Turtle document into a default-graph-only graph and
// the registry of its prefix declarations.
func ParseTurtle(input string) (*rdf.Graph, *namespace.Registry, error) {
	return ParseTurtleContext(context.Background(), input)
}

// ParseTurtleContext is ParseTurtle with cancellation.
func ParseTurtleContext(ctx context.Context, input string) (*rdf.Graph, *namespace.Registry, error) {
	g, err := decode(ctx, strings.NewReader(input), rdfio.FormatTurtle)
	if err != nil {
		return nil, nil, err
	}
	return g, turtlePrefixes(input), nil
}

// turtlePrefixes returns the prefix directives of input in declaration
// order. Names that are not legal prefix tokens are skipped.
func turtlePrefixes(input string) *namespace.Registry {
	reg := namespace.New("")
	for _, m := range prefixDirective.FindAllStringSubmatch(input, -1) {
		reg.Declare(m[1], m[2])
	}
	return reg
}
