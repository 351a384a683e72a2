package store

import (
	"context"
	"sync"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/sparql"
)

// Memory is an in-memory Store backed by an rdf.Graph.
type Memory struct {
	mu     sync.RWMutex
	graph  *rdf.Graph
	closed bool
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{graph: rdf.NewGraph()}
}

// Add implements Store.
func (m *Memory) Add(ctx context.Context, quads ...rdf.Quad) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for _, q := range quads {
		m.graph.Add(q)
	}
	return nil
}

// Match implements sparql.Source.
func (m *Memory) Match(ctx context.Context, pattern rdf.Pattern) ([]rdf.Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return m.graph.Match(pattern), nil
}

// Query implements sparql.Querier.
func (m *Memory) Query(ctx context.Context, query string) (*sparql.Result, error) {
	return sparql.Engine{Source: m}.Query(ctx, query)
}

// Len implements Store.
func (m *Memory) Len(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return 0, ErrClosed
	}
	return m.graph.Len(), nil
}

// Close implements Store.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
