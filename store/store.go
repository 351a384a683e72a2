// Package store holds target triple stores for constraint evaluation and
// ad-hoc queries: an in-memory store and a persistent SQLite store.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/c360studio/semweave/export"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/sparql"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a queryable quad store. Implementations are safe for concurrent
// use; evaluation only ever reads.
type Store interface {
	sparql.Source
	sparql.Querier

	// Add inserts quads, ignoring duplicates.
	Add(ctx context.Context, quads ...rdf.Quad) error

	// Len returns the number of stored quads.
	Len(ctx context.Context) (int, error)

	Close() error
}

// Open returns a SQLite store at path, or a memory store for an empty path
// or ":memory:".
func Open(path string) (Store, error) {
	if path == "" || path == ":memory:" {
		return NewMemory(), nil
	}
	s, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// AddGraph inserts every quad of g.
func AddGraph(ctx context.Context, s Store, g *rdf.Graph) error {
	return s.Add(ctx, g.Quads()...)
}

// LoadFile reads a Turtle, JSON-LD or N-Quads file, chosen by extension,
// into s and returns the number of quads read.
func LoadFile(ctx context.Context, s Store, path string) (int, error) {
	format, ok := export.FormatFromPath(path)
	if !ok {
		return 0, fmt.Errorf("load %s: %w", path, export.ErrUnsupportedFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	g, _, err := export.ParseContext(ctx, format, data)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	if err := AddGraph(ctx, s, g); err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	return g.Len(), nil
}
