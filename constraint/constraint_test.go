package constraint_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semweave/builder"
	"github.com/c360studio/semweave/constraint"
	"github.com/c360studio/semweave/document"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/scanner"
	"github.com/c360studio/semweave/sparql"
	"github.com/c360studio/semweave/store"
)

const source = "[ex]: http://example.org/\n" +
	"\n" +
	"[Alice]{typeof=ex:Person; ex:name=\"Alice\"}\n" +
	"[Bob]{typeof=ex:Person}\n" +
	"\n" +
	"## SHACL Constraint: hasName\n" +
	"\n" +
	"```sparql\n" +
	"PREFIX ex: <http://example.org/>\n" +
	"SELECT ?this WHERE {\n" +
	"  ?this a ex:Person .\n" +
	"  FILTER NOT EXISTS { ?this ex:name ?n }\n" +
	"}\n" +
	"```\n" +
	"\n" +
	"## SHACL Constraint: broken\n" +
	"\n" +
	"```sparql\n" +
	"SELEKT nonsense\n" +
	"```\n" +
	"\n" +
	"## SHACL Constraint: anyPerson\n" +
	"\n" +
	"```sparql\n" +
	"ASK { ?x a <http://example.org/Person> }\n" +
	"```\n"

func scan(t *testing.T, text string) []scanner.Statement {
	t.Helper()
	doc, err := document.NewMarkdownParser().Parse("test.md", []byte(text))
	require.NoError(t, err)
	return scanner.Scan(doc).Statements
}

func loaded(t *testing.T, statements []scanner.Statement) store.Store {
	t.Helper()
	res := builder.New(nil, nil, nil).Build(statements)
	s := store.NewMemory()
	require.NoError(t, store.AddGraph(context.Background(), s, res.Graph))
	return s
}

func TestExtract(t *testing.T) {
	cs := constraint.Extract(scan(t, source))
	require.Len(t, cs, 3)
	assert.Equal(t, "hasName", cs[0].ID)
	assert.Contains(t, cs[0].Body, "FILTER NOT EXISTS")
	assert.Equal(t, "broken", cs[1].ID)
	assert.Equal(t, "anyPerson", cs[2].ID)
}

func TestEvaluate_IsolatesFailures(t *testing.T) {
	statements := scan(t, source)
	s := loaded(t, statements)

	ev := &constraint.Evaluator{Concurrency: 2}
	rs := ev.Evaluate(context.Background(), s, constraint.Extract(statements))

	require.Len(t, rs, 3)

	assert.Equal(t, "hasName", rs[0].ConstraintID)
	assert.Equal(t, rdf.IRI("http://example.org/Bob"), rs[0].Subject)
	assert.Equal(t, "Failed constraint hasName", rs[0].Message)
	assert.False(t, rs[0].Failed())

	assert.Equal(t, "broken", rs[1].ConstraintID)
	require.Error(t, rs[1].Error)
	assert.ErrorIs(t, rs[1].Error, sparql.ErrSyntax)

	assert.Equal(t, "anyPerson", rs[2].ConstraintID)
	assert.True(t, rs[2].Subject.IsZero())

	sum := constraint.Summarize(3, rs)
	assert.Equal(t, 2, sum.Violations)
	assert.Equal(t, 1, sum.Errors)
	assert.False(t, sum.OK())
}

func TestEvaluate_NoMatchingRows(t *testing.T) {
	text := "## SHACL Constraint: hasName\n\n```sparql\n" +
		"SELECT ?this WHERE { ?this a <http://example.org/Person> }\n```\n"
	statements := scan(t, text)

	ev := &constraint.Evaluator{}
	rs := ev.Evaluate(context.Background(), store.NewMemory(), constraint.Extract(statements))

	assert.Empty(t, rs)
	assert.True(t, constraint.Summarize(1, rs).OK())
}

type stubQuerier struct {
	calls atomic.Int32
	fn    func(q string) (*sparql.Result, error)
}

func (s *stubQuerier) Query(_ context.Context, q string) (*sparql.Result, error) {
	s.calls.Add(1)
	return s.fn(q)
}

func TestEvaluate_PanickingQuerierIsolated(t *testing.T) {
	q := &stubQuerier{fn: func(body string) (*sparql.Result, error) {
		if body == "panic" {
			panic("querier exploded")
		}
		return &sparql.Result{
			Vars:     []string{"this"},
			Bindings: []sparql.Binding{{"this": rdf.IRI("urn:" + body)}},
		}, nil
	}}
	cs := []constraint.Constraint{{ID: "a", Body: "a"}, {ID: "bad", Body: "panic"}, {ID: "c", Body: "c"}}

	rs := (&constraint.Evaluator{Concurrency: 2}).Evaluate(context.Background(), q, cs)

	require.Len(t, rs, 3)
	assert.Equal(t, "a", rs[0].ConstraintID)
	assert.NoError(t, rs[0].Error)
	assert.Equal(t, "bad", rs[1].ConstraintID)
	require.Error(t, rs[1].Error)
	assert.Contains(t, rs[1].Error.Error(), "querier exploded")
	assert.Equal(t, "c", rs[2].ConstraintID)
	assert.Equal(t, rdf.IRI("urn:c"), rs[2].Subject)
}

func TestEvaluate_PreservesDeclarationOrder(t *testing.T) {
	q := &stubQuerier{fn: func(body string) (*sparql.Result, error) {
		if body == "fail" {
			return nil, errors.New("boom")
		}
		return &sparql.Result{
			Vars:     []string{"this"},
			Bindings: []sparql.Binding{{"this": rdf.IRI("urn:" + body)}},
		}, nil
	}}

	var cs []constraint.Constraint
	for _, id := range []string{"a", "b", "fail", "c", "d", "e"} {
		cs = append(cs, constraint.Constraint{ID: id, Body: id})
	}

	ev := &constraint.Evaluator{Concurrency: 3}
	rs := ev.Evaluate(context.Background(), q, cs)

	require.Len(t, rs, len(cs))
	for i, r := range rs {
		assert.Equal(t, cs[i].ID, r.ConstraintID)
	}
	assert.EqualError(t, rs[2].Error, "boom")
	assert.Equal(t, rdf.IRI("urn:e"), rs[5].Subject)
	assert.Equal(t, int32(len(cs)), q.calls.Load())
}

func TestEvaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := &stubQuerier{fn: func(string) (*sparql.Result, error) {
		return &sparql.Result{}, nil
	}}
	cs := []constraint.Constraint{{ID: "a"}, {ID: "b"}}

	rs := (&constraint.Evaluator{}).Evaluate(ctx, q, cs)

	require.Len(t, rs, 2)
	for _, r := range rs {
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
	assert.Zero(t, q.calls.Load())
}

func TestResult_String(t *testing.T) {
	v := constraint.Result{ConstraintID: "x", Subject: rdf.IRI("urn:s"), Message: constraint.Message("x")}
	assert.Equal(t, "x: Failed constraint x (<urn:s>)", v.String())

	f := constraint.Result{ConstraintID: "x", Error: errors.New("bad")}
	assert.Equal(t, "x: error: bad", f.String())
}
