package sparql

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

const ex = "http://example.org/"

type graphSource struct {
	g   *rdf.Graph
	err error
}

func (s graphSource) Match(_ context.Context, p rdf.Pattern) ([]rdf.Quad, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.g.Match(p), nil
}

func fixture() graphSource {
	g := rdf.NewGraph()
	typ := rdf.IRI(vocabulary.RDFType)
	person := rdf.IRI(ex + "Person")
	name := rdf.IRI(ex + "name")
	age := rdf.IRI(ex + "age")

	g.AddTriple(rdf.IRI(ex+"alice"), typ, person)
	g.AddTriple(rdf.IRI(ex+"alice"), name, rdf.Literal("Alice"))
	g.AddTriple(rdf.IRI(ex+"alice"), age, rdf.TypedLiteral("33", vocabulary.XSDInteger))
	g.AddTriple(rdf.IRI(ex+"bob"), typ, person)
	g.AddTriple(rdf.IRI(ex+"bob"), age, rdf.TypedLiteral("17", vocabulary.XSDInteger))
	g.AddTriple(rdf.IRI(ex+"carol"), typ, person)
	g.AddTriple(rdf.IRI(ex+"carol"), name, rdf.LangLiteral("Carole", "fr"))
	g.Add(rdf.NewQuad(rdf.IRI(ex+"alice"), rdf.IRI(ex+"knows"), rdf.IRI(ex+"bob"), rdf.IRI(ex+"stmt-1")))
	g.AddTriple(rdf.IRI(ex+"stmt-1"), rdf.IRI(ex+"certainty"), rdf.Literal("0.9"))
	return graphSource{g: g}
}

func run(t *testing.T, query string) *Result {
	t.Helper()
	res, err := Execute(context.Background(), fixture(), query, map[string]string{"ex": ex})
	require.NoError(t, err)
	return res
}

func subjects(res *Result, v string) []string {
	var out []string
	for _, b := range res.Bindings {
		out = append(out, b[v].Value)
	}
	return out
}

func TestSelect_Basic(t *testing.T) {
	res := run(t, `SELECT ?s ?n WHERE { ?s a ex:Person ; ex:name ?n . }`)
	assert.Equal(t, []string{"s", "n"}, res.Vars)
	assert.Equal(t, []string{ex + "alice", ex + "carol"}, subjects(res, "s"))
	assert.Equal(t, rdf.Literal("Alice"), res.Bindings[0]["n"])
}

func TestSelect_NotExists(t *testing.T) {
	res := run(t, `
		PREFIX ex: <http://example.org/>
		SELECT ?this WHERE {
			?this a ex:Person .
			FILTER NOT EXISTS { ?this ex:name ?name }
		}`)
	assert.Equal(t, []string{ex + "bob"}, subjects(res, "this"))
}

func TestSelect_OptionalUnbound(t *testing.T) {
	res := run(t, `SELECT ?s WHERE { ?s a ex:Person OPTIONAL { ?s ex:name ?n } FILTER(!bound(?n)) }`)
	assert.Equal(t, []string{ex + "bob"}, subjects(res, "s"))
}

func TestSelect_Filters(t *testing.T) {
	tests := []struct {
		name  string
		where string
		want  []string
	}{
		{"numeric less than", `?s ex:age ?a FILTER(?a < 18)`, []string{ex + "bob"}},
		{"numeric and", `?s ex:age ?a FILTER(?a >= 18 && ?a != 40)`, []string{ex + "alice"}},
		{"or", `?s ex:age ?a FILTER(?a = 17 || ?a = 33)`, []string{ex + "alice", ex + "bob"}},
		{"equality with iri", `?s a ?t FILTER(?s = ex:carol)`, []string{ex + "carol"}},
		{"lang", `?s ex:name ?n FILTER(lang(?n) = "fr")`, []string{ex + "carol"}},
		{"regex case insensitive", `?s ex:name ?n FILTER regex(?n, "^al", "i")`, []string{ex + "alice"}},
		{"isLiteral", `?s ?p ?o FILTER(isLiteral(?o) && ?p = ex:name && strstarts(str(?o), "C"))`, []string{ex + "carol"}},
		{"unbound comparison rejects row", `?s a ex:Person FILTER(?missing = 1)`, nil},
		{"exists", `?s a ex:Person FILTER EXISTS { ?s ex:knows ?o }`, []string{ex + "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "SELECT ?s WHERE { "+tt.where+" }")
			assert.Equal(t, tt.want, subjects(res, "s"))
		})
	}
}

func TestSelect_DefaultGraphIsUnion(t *testing.T) {
	res := run(t, `SELECT ?o WHERE { ex:alice ex:knows ?o }`)
	assert.Equal(t, []string{ex + "bob"}, subjects(res, "o"))
}

func TestSelect_GraphPattern(t *testing.T) {
	res := run(t, `SELECT ?g ?c WHERE { GRAPH ?g { ?s ex:knows ?o } ?g ex:certainty ?c }`)
	require.Len(t, res.Bindings, 1)
	assert.Equal(t, rdf.IRI(ex+"stmt-1"), res.Bindings[0]["g"])
	assert.Equal(t, rdf.Literal("0.9"), res.Bindings[0]["c"])

	res = run(t, `SELECT ?s WHERE { GRAPH ?g { ?s a ex:Person } }`)
	assert.Empty(t, res.Bindings, "default-graph statements are not in a named graph")
}

func TestSelect_UnionDistinctLimit(t *testing.T) {
	res := run(t, `SELECT DISTINCT ?s WHERE { { ?s ex:name ?x } UNION { ?s ex:age ?x } }`)
	assert.Equal(t, []string{ex + "alice", ex + "carol", ex + "bob"}, subjects(res, "s"))

	res = run(t, `SELECT ?s WHERE { ?s a ex:Person } LIMIT 2 OFFSET 1`)
	assert.Equal(t, []string{ex + "bob", ex + "carol"}, subjects(res, "s"))
}

func TestSelect_Star(t *testing.T) {
	res := run(t, `SELECT * { ?s ex:age ?age }`)
	assert.Equal(t, []string{"s", "age"}, res.Vars)
	assert.Len(t, res.Bindings, 2)
}

func TestAsk(t *testing.T) {
	assert.True(t, run(t, `ASK { ex:alice a ex:Person }`).Boolean)
	assert.False(t, run(t, `ASK WHERE { ex:alice ex:age "33" }`).Boolean, "plain literal differs from typed")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"construct", "CONSTRUCT { ?s ?p ?o } WHERE { ?s ?p ?o }"},
		{"unclosed group", "SELECT ?s WHERE { ?s ?p ?o "},
		{"undefined prefix", "SELECT ?s WHERE { ?s nope:p ?o }"},
		{"missing projection", "SELECT WHERE { ?s ?p ?o }"},
		{"bind", "SELECT ?s WHERE { BIND(1 AS ?s) }"},
		{"bound needs var", "SELECT ?s WHERE { ?s ?p ?o FILTER(bound(1)) }"},
		{"trailing", "ASK { ?s ?p ?o } garbage"},
		{"literal subject", `SELECT ?p WHERE { "x" ?p ?o }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.query)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestExecute_SourceError(t *testing.T) {
	boom := errors.New("disk gone")
	_, err := Execute(context.Background(), graphSource{err: boom}, "ASK { ?s ?p ?o }", nil)
	assert.ErrorIs(t, err, boom)
}

func TestExecute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Execute(ctx, fixture(), "SELECT ?s WHERE { ?s ?p ?o }", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
