package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"

	// FormatNQuads produces N-Quads (.nq) output, keeping graph labels.
	FormatNQuads Format = "nquads"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Aliases are alternative names accepted on the command line.
	Aliases []string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Aliases:     []string{"ttl"},
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Aliases:     []string{"json-ld"},
		Description: "JSON-LD - JSON for Linked Data",
	},
	FormatNQuads: {
		Name:        FormatNQuads,
		MIMEType:    "application/n-quads",
		Extension:   ".nq",
		Aliases:     []string{"nq", "ntriples", "nt"},
		Description: "N-Quads - Line-based RDF dataset format",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(FormatRegistry))
	for f := range FormatRegistry {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}

// ParseFormat resolves a format name or alias.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, info := range FormatRegistry {
		if string(f) == name {
			return f, nil
		}
		for _, alias := range info.Aliases {
			if alias == name {
				return f, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnsupportedFormat, name, strings.Join(Formats(), ", "))
}

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".nt" {
		return FormatNQuads, true
	}
	for f, info := range FormatRegistry {
		if info.Extension == ext {
			return f, true
		}
	}
	return "", false
}

// Write serializes g in the given format. The graph is validated and
// rendered to a buffer first so a failure never leaves partial output in w.
func Write(w io.Writer, g *rdf.Graph, reg *namespace.Registry, format Format) error {
	if reg == nil {
		reg = namespace.New("")
	}
	if err := Validate(g); err != nil {
		return err
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatTurtle:
		err = writeTurtle(&buf, g, reg)
	case FormatJSONLD:
		err = writeJSONLD(&buf, g, reg)
	case FormatNQuads:
		err = writeNQuads(&buf, g)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("serialize %s: %w", format, err)
	}

	_, err = buf.WriteTo(w)
	return err
}

// Serialize returns g rendered in the given format.
func Serialize(g *rdf.Graph, reg *namespace.Registry, format Format) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, g, reg, format); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Parse reads a serialized graph. Formats without prefix declarations
// return a registry holding only the fallback prefix.
func Parse(format Format, data []byte) (*rdf.Graph, *namespace.Registry, error) {
	return ParseContext(context.Background(), format, data)
}

// ParseContext is Parse with cancellation.
func ParseContext(ctx context.Context, format Format, data []byte) (*rdf.Graph, *namespace.Registry, error) {
	switch format {
	case FormatTurtle:
		return ParseTurtleContext(ctx, string(data))
	case FormatJSONLD:
		return ParseJSONLDContext(ctx, data)
	case FormatNQuads:
		g, err := ParseNQuads(bytes.NewReader(data))
		return g, namespace.New(""), err
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}
