package sparql

import (
	"context"
	"fmt"
	"strings"

	"github.com/c360studio/semweave/rdf"
)

// Source is the read side of a quad store.
type Source interface {
	Match(ctx context.Context, pattern rdf.Pattern) ([]rdf.Quad, error)
}

// Querier answers query text. Stores implement it; Engine adapts any
// Source.
type Querier interface {
	Query(ctx context.Context, query string) (*Result, error)
}

// Engine runs queries against a Source with default prefixes that queries
// may use without declaring them.
type Engine struct {
	Source   Source
	Prefixes map[string]string
}

// Query implements Querier.
func (e Engine) Query(ctx context.Context, query string) (*Result, error) {
	return Execute(ctx, e.Source, query, e.Prefixes)
}

// Execute parses and runs query against src.
func Execute(ctx context.Context, src Source, query string, prefixes map[string]string) (*Result, error) {
	q, err := NewParser(query, prefixes).Parse()
	if err != nil {
		return nil, err
	}
	return Run(ctx, src, q)
}

// Run evaluates a parsed query.
func Run(ctx context.Context, src Source, q *Query) (*Result, error) {
	e := &evaluator{ctx: ctx, src: src}
	rows, err := e.group(q.Where, []Binding{{}}, nil)
	if err != nil {
		return nil, err
	}

	if q.Type == QueryTypeAsk {
		return &Result{Type: QueryTypeAsk, Boolean: len(rows) > 0}, nil
	}

	vars := q.Projection()
	out := make([]Binding, 0, len(rows))
	seen := make(map[string]struct{})
	for _, row := range rows {
		proj := make(Binding, len(vars))
		for _, v := range vars {
			if t, ok := row[v]; ok {
				proj[v] = t
			}
		}
		if q.Distinct {
			key := rowKey(proj, vars)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, proj)
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[q.Offset:]
		}
	}
	if q.Limit >= 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return &Result{Vars: vars, Bindings: out}, nil
}

func rowKey(b Binding, vars []string) string {
	var sb strings.Builder
	for _, v := range vars {
		sb.WriteString(b[v].String())
		sb.WriteByte(0)
	}
	return sb.String()
}

type evaluator struct {
	ctx context.Context
	src Source
}

// group joins the group's elements left to right starting from input and
// then applies the group's filters. graph is nil outside GRAPH blocks.
func (e *evaluator) group(g *GroupPattern, input []Binding, graph *Node) ([]Binding, error) {
	rows := input
	for _, el := range g.Elements {
		if err := e.ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch v := el.(type) {
		case *TriplePattern:
			rows, err = e.triple(v, rows, graph)
		case *GroupPattern:
			rows, err = e.group(v, rows, graph)
		case *OptionalPattern:
			rows, err = e.optional(v, rows, graph)
		case *UnionPattern:
			rows, err = e.union(v, rows, graph)
		case *GraphPattern:
			name := v.Name
			rows, err = e.group(v.Group, rows, &name)
		default:
			err = fmt.Errorf("unsupported pattern %T", el)
		}
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
	}

	if len(g.Filters) == 0 {
		return rows, nil
	}
	out := rows[:0:0]
	for _, row := range rows {
		keep := true
		for _, f := range g.Filters {
			ok, err := e.test(f, row, graph)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

func (e *evaluator) optional(o *OptionalPattern, rows []Binding, graph *Node) ([]Binding, error) {
	var out []Binding
	for _, row := range rows {
		ext, err := e.group(o.Group, []Binding{row}, graph)
		if err != nil {
			return nil, err
		}
		if len(ext) == 0 {
			out = append(out, row)
			continue
		}
		out = append(out, ext...)
	}
	return out, nil
}

func (e *evaluator) union(u *UnionPattern, rows []Binding, graph *Node) ([]Binding, error) {
	var out []Binding
	for _, alt := range u.Alternatives {
		r, err := e.group(alt, rows, graph)
		if err != nil {
			return nil, err
		}
		out = append(out, r...)
	}
	return out, nil
}

func (e *evaluator) triple(tp *TriplePattern, rows []Binding, graph *Node) ([]Binding, error) {
	var out []Binding
	for _, row := range rows {
		pattern := rdf.Pattern{
			Subject:   resolve(tp.Subject, row),
			Predicate: resolve(tp.Predicate, row),
			Object:    resolve(tp.Object, row),
		}
		if graph != nil {
			pattern.Graph = resolve(*graph, row)
		}

		quads, err := e.src.Match(e.ctx, pattern)
		if err != nil {
			return nil, fmt.Errorf("match: %w", err)
		}
		for _, q := range quads {
			if graph != nil && q.Graph.IsZero() {
				continue
			}
			next := row.clone()
			if !bind(next, tp.Subject, q.Subject) ||
				!bind(next, tp.Predicate, q.Predicate) ||
				!bind(next, tp.Object, q.Object) {
				continue
			}
			if graph != nil && !bind(next, *graph, q.Graph) {
				continue
			}
			out = append(out, next)
		}
	}
	return out, nil
}

// resolve returns the constant for n under row, or nil for an unbound
// variable.
func resolve(n Node, row Binding) *rdf.Term {
	if !n.IsVar() {
		t := n.Term
		return &t
	}
	if t, ok := row[n.Var]; ok {
		return &t
	}
	return nil
}

// bind records t for a variable node, failing on a conflicting value.
func bind(row Binding, n Node, t rdf.Term) bool {
	if !n.IsVar() {
		return n.Term == t
	}
	if old, ok := row[n.Var]; ok {
		return old == t
	}
	row[n.Var] = t
	return true
}
