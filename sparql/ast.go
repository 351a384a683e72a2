// Package sparql parses and evaluates the SPARQL subset used by embedded
// constraints and ad-hoc queries: SELECT and ASK over basic graph patterns
// with OPTIONAL, UNION, GRAPH, FILTER (including EXISTS / NOT EXISTS) and
// LIMIT / OFFSET.
//
// Evaluation runs against any Source. Outside a GRAPH block a pattern
// matches statements in every graph, so reified statements stay visible
// to plain queries.
package sparql

import (
	"errors"

	"github.com/c360studio/semweave/rdf"
)

// ErrSyntax is returned for queries outside the supported subset.
var ErrSyntax = errors.New("sparql syntax error")

// QueryType distinguishes query forms.
type QueryType int

// Query forms.
const (
	QueryTypeSelect QueryType = iota
	QueryTypeAsk
)

// Query is a parsed query.
type Query struct {
	Type     QueryType
	Distinct bool

	// Vars are the projected variables; empty for SELECT *.
	Vars []string

	Where  *GroupPattern
	Limit  int // -1 when absent
	Offset int

	// vars in order of first appearance, for SELECT *.
	allVars []string
}

// Projection returns the variables a SELECT returns.
func (q *Query) Projection() []string {
	if len(q.Vars) > 0 {
		return q.Vars
	}
	return q.allVars
}

// Node is a variable or a constant term in a pattern.
type Node struct {
	Var  string
	Term rdf.Term
}

// IsVar reports whether the node is a variable.
func (n Node) IsVar() bool { return n.Var != "" }

// TriplePattern is one subject/predicate/object pattern.
type TriplePattern struct {
	Subject   Node
	Predicate Node
	Object    Node
}

// Element is one member of a group graph pattern.
type Element interface {
	element()
}

// GroupPattern is "{ ... }". Filters apply to the whole group.
type GroupPattern struct {
	Elements []Element
	Filters  []Expr
}

// OptionalPattern is "OPTIONAL { ... }".
type OptionalPattern struct {
	Group *GroupPattern
}

// UnionPattern is "{ ... } UNION { ... }".
type UnionPattern struct {
	Alternatives []*GroupPattern
}

// GraphPattern is "GRAPH ?g { ... }" or "GRAPH <g> { ... }".
type GraphPattern struct {
	Name  Node
	Group *GroupPattern
}

func (*TriplePattern) element()   {}
func (*GroupPattern) element()    {}
func (*OptionalPattern) element() {}
func (*UnionPattern) element()    {}
func (*GraphPattern) element()    {}

// Expr is a filter expression.
type Expr interface {
	expr()
}

// TermExpr is a variable or constant.
type TermExpr struct {
	Node Node
}

// NotExpr is "!e".
type NotExpr struct {
	Operand Expr
}

// BinaryExpr covers logical and comparison operators.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// CallExpr is a builtin function call.
type CallExpr struct {
	Name string
	Args []Expr
}

// ExistsExpr is "EXISTS { ... }" or "NOT EXISTS { ... }".
type ExistsExpr struct {
	Not   bool
	Group *GroupPattern
}

func (*TermExpr) expr()   {}
func (*NotExpr) expr()    {}
func (*BinaryExpr) expr() {}
func (*CallExpr) expr()   {}
func (*ExistsExpr) expr() {}

// Binding maps variable names (without '?') to terms.
type Binding map[string]rdf.Term

func (b Binding) clone() Binding {
	c := make(Binding, len(b)+2)
	for k, v := range b {
		c[k] = v
	}
	return c
}

// Result is the outcome of a query.
type Result struct {
	Type QueryType

	// Vars are the projected variable names for SELECT.
	Vars []string

	// Bindings are the solution rows for SELECT.
	Bindings []Binding

	// Boolean is the answer to ASK.
	Boolean bool
}
