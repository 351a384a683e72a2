package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semweave/document"
)

func para(text string) *document.Paragraph {
	return &document.Paragraph{Text: text, Line: 1}
}

func TestScan_NamespaceAndEntity(t *testing.T) {
	res := ScanBlocks([]document.Block{
		para("[ex]: http://example.org/\n[Doc]{typeof=ex:Document; name=\"Demo\"}"),
	})

	require.Len(t, res.Statements, 2)
	assert.Empty(t, res.Diagnostics)

	ns := res.Statements[0]
	assert.Equal(t, KindNamespace, ns.Kind)
	assert.Equal(t, &NamespaceDecl{Prefix: "ex", Base: "http://example.org/"}, ns.Namespace)
	assert.Equal(t, 1, ns.Line)

	ent := res.Statements[1]
	assert.Equal(t, KindEntity, ent.Kind)
	assert.Equal(t, 2, ent.Line)
	assert.Equal(t, "Doc", ent.Entity.Label)
	assert.Equal(t, []Attr{
		{Key: "typeof", Value: "ex:Document"},
		{Key: "name", Value: "Demo", Quoted: true},
	}, ent.Entity.Attrs)
}

func TestScan_AttributeSeparators(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []Attr
	}{
		{
			name: "whitespace",
			body: `a=1 b="two words"`,
			want: []Attr{{Key: "a", Value: "1"}, {Key: "b", Value: "two words", Quoted: true}},
		},
		{
			name: "semicolon inside quotes",
			body: `note="x; y";kind=ex:K`,
			want: []Attr{{Key: "note", Value: "x; y", Quoted: true}, {Key: "kind", Value: "ex:K"}},
		},
		{
			name: "spaces around equals",
			body: `name = "Demo"`,
			want: []Attr{{Key: "name", Value: "Demo", Quoted: true}},
		},
		{
			name: "escaped quote",
			body: `q="say \"hi\""`,
			want: []Attr{{Key: "q", Value: `say "hi"`, Quoted: true}},
		},
		{
			name: "empty quoted value",
			body: `blank=""`,
			want: []Attr{{Key: "blank", Value: "", Quoted: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanBlocks([]document.Block{para("[E]{" + tt.body + "}")})
			require.Len(t, res.Statements, 1)
			assert.Equal(t, tt.want, res.Statements[0].Entity.Attrs)
			assert.Empty(t, res.Diagnostics)
		})
	}
}

func TestScan_MalformedAttributeSkipped(t *testing.T) {
	res := ScanBlocks([]document.Block{para(`[E]{typeof=ex:T orphan name=}`)})

	require.Len(t, res.Statements, 1)
	assert.Equal(t, []Attr{{Key: "typeof", Value: "ex:T"}}, res.Statements[0].Entity.Attrs)
	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Equal(t, DiagMalformedAttr, d.Kind)
	}
}

func TestScan_ReifiedRequiresRDFStar(t *testing.T) {
	line := `<<[A] ex:relatedTo: [B]>> certainty:"0.9"`

	res := ScanBlocks([]document.Block{para(line)})
	assert.Empty(t, res.Statements)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagReifiedInStandard, res.Diagnostics[0].Kind)

	res = ScanBlocks([]document.Block{
		&document.Heading{Level: 2, Text: "Mode: rdf-star", Line: 1},
		&document.Paragraph{Text: line, Line: 3},
	})
	require.Len(t, res.Statements, 2)
	assert.Equal(t, KindMode, res.Statements[0].Kind)
	assert.Equal(t, ModeRDFStar, res.Mode)

	r := res.Statements[1].Reified
	require.NotNil(t, r)
	assert.Equal(t, "A", r.Subject)
	assert.Equal(t, "ex:relatedTo", r.Predicate)
	assert.Equal(t, "B", r.Object)
	assert.Equal(t, []Attr{{Key: "certainty", Value: "0.9", Quoted: true}}, r.Annotations)
}

func TestScan_ReifiedForms(t *testing.T) {
	tests := []struct {
		name string
		line string
		pred string
		anns []Attr
	}{
		{"no trailing colon", `<<[A] ex:p [B]>>`, "ex:p", nil},
		{"tight colon", `<<[A] p:[B]>> source:wiki`, "p", []Attr{{Key: "source", Value: "wiki"}}},
		{
			"prefixed annotation key",
			`<<[A] ex:p: [B]>> ex:note:"a: b"; certainty:"0.5"`,
			"ex:p",
			[]Attr{
				{Key: "ex:note", Value: "a: b", Quoted: true},
				{Key: "certainty", Value: "0.5", Quoted: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanBlocks([]document.Block{para(tt.line)}, WithMode(ModeRDFStar))
			require.Len(t, res.Statements, 1, "diagnostics: %v", res.Diagnostics)
			r := res.Statements[0].Reified
			assert.Equal(t, tt.pred, r.Predicate)
			assert.Equal(t, tt.anns, r.Annotations)
		})
	}
}

func TestScan_MalformedReified(t *testing.T) {
	res := ScanBlocks([]document.Block{para(`<<[A] ex:p>>`)}, WithMode(ModeRDFStar))
	assert.Empty(t, res.Statements)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagMalformedReified, res.Diagnostics[0].Kind)
}

func TestScan_ModeSwitchesBack(t *testing.T) {
	res := ScanBlocks([]document.Block{
		&document.Heading{Level: 2, Text: "Mode: rdf-star"},
		para(`<<[A] p: [B]>>`),
		&document.Heading{Level: 2, Text: "Mode: standard"},
		para(`<<[C] p: [D]>>`),
	})

	assert.Equal(t, 1, res.Count(KindReified))
	assert.Equal(t, ModeStandard, res.Mode)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagReifiedInStandard, res.Diagnostics[0].Kind)
}

func TestScan_DirectivesNeedLevelTwo(t *testing.T) {
	res := ScanBlocks([]document.Block{
		&document.Heading{Level: 3, Text: "Mode: rdf-star"},
		&document.Heading{Level: 1, Text: "SHACL Constraint: x"},
		&document.Code{Lang: "sparql", Body: "ASK {}"},
	})
	assert.Empty(t, res.Statements)
	assert.Equal(t, ModeStandard, res.Mode)
}

func TestScan_UnknownMode(t *testing.T) {
	res := ScanBlocks([]document.Block{&document.Heading{Level: 2, Text: "Mode: turtle"}})
	assert.Empty(t, res.Statements)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagUnknownMode, res.Diagnostics[0].Kind)
}

func TestScan_Constraint(t *testing.T) {
	query := "SELECT ?this WHERE { ?this a ex:Person }"
	res := ScanBlocks([]document.Block{
		&document.Heading{Level: 2, Text: "SHACL Constraint: hasName", Line: 4},
		&document.Code{Lang: "SPARQL", Body: query, Line: 6},
	})

	require.Len(t, res.Statements, 1)
	c := res.Statements[0].Constraint
	require.NotNil(t, c)
	assert.Equal(t, "hasName", c.ID)
	assert.Equal(t, query, c.Body)
	assert.Equal(t, 4, res.Statements[0].Line)
}

func TestScan_ConstraintWithoutQueryDropped(t *testing.T) {
	tests := []struct {
		name string
		next document.Block
	}{
		{"nothing follows", nil},
		{"paragraph follows", para("text")},
		{"wrong language", &document.Code{Lang: "python", Body: "print()"}},
		{"untagged code", &document.Code{Body: "SELECT * {}"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := []document.Block{&document.Heading{Level: 2, Text: "SHACL Constraint: c1"}}
			if tt.next != nil {
				blocks = append(blocks, tt.next)
			}
			res := ScanBlocks(blocks)
			assert.Zero(t, res.Count(KindConstraint))
			require.NotEmpty(t, res.Diagnostics)
			assert.Equal(t, DiagConstraintNoQuery, res.Diagnostics[0].Kind)
		})
	}
}

func TestScan_NestedContainers(t *testing.T) {
	res := ScanBlocks([]document.Block{
		&document.Container{Kind: document.ContainerList, Children: []document.Block{
			&document.Container{Kind: document.ContainerItem, Children: []document.Block{
				para("[Item]{typeof=ex:Thing}"),
			}},
		}},
		&document.Container{Kind: document.ContainerBlockquote, Children: []document.Block{
			&document.Heading{Level: 2, Text: "SHACL Constraint: quoted"},
			&document.Code{Lang: "sparql", Body: "ASK { ?s ?p ?o }"},
		}},
	})

	require.Len(t, res.Statements, 2)
	assert.Equal(t, "Item", res.Statements[0].Entity.Label)
	assert.Equal(t, "quoted", res.Statements[1].Constraint.ID)
}

func TestScan_InvalidNamespacePrefix(t *testing.T) {
	res := ScanBlocks([]document.Block{para("[my prefix]: http://x.org/")})
	assert.Empty(t, res.Statements)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagInvalidNamespace, res.Diagnostics[0].Kind)
}

func TestScan_ProseIgnored(t *testing.T) {
	res := ScanBlocks([]document.Block{
		para("Just some prose with [a link](http://x.org) in it."),
		&document.Code{Lang: "go", Body: "[X]{a=b}"},
	})
	assert.Empty(t, res.Statements)
	assert.Empty(t, res.Diagnostics)
}

func TestScan_UnclosedEntity(t *testing.T) {
	res := ScanBlocks([]document.Block{para("[E]{typeof=ex:T")})
	assert.Empty(t, res.Statements)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, DiagMalformedEntity, res.Diagnostics[0].Kind)
}

func TestScan_EntityTrailingText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Attr
	}{
		{name: "prose after brace", text: "[X]{a=b} trailing text", want: []Attr{{Key: "a", Value: "b"}}},
		{name: "spaces only", text: "[X]{a=b}   ", want: []Attr{{Key: "a", Value: "b"}}},
		{name: "quoted brace", text: `[X]{a="}"} see above`, want: []Attr{{Key: "a", Value: "}", Quoted: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScanBlocks([]document.Block{para(tt.text)})
			require.Len(t, res.Statements, 1)
			assert.Equal(t, "X", res.Statements[0].Entity.Label)
			assert.Equal(t, tt.want, res.Statements[0].Entity.Attrs)
			assert.Empty(t, res.Diagnostics)
		})
	}
}

func TestScan_Document(t *testing.T) {
	src := "---\n" +
		"mode: rdf-star\n" +
		"namespaces:\n" +
		"  foaf: http://xmlns.com/foaf/0.1/\n" +
		"---\n" +
		"[ex]: http://a.org/\n" +
		"[ex]: http://b.org/\n" +
		"\n" +
		"<<[A] ex:knows: [B]>>\n"

	doc, err := document.NewMarkdownParser().Parse("doc.md", []byte(src))
	require.NoError(t, err)

	res := Scan(doc)
	require.Len(t, res.Statements, 4)
	assert.Equal(t, "foaf", res.Statements[0].Namespace.Prefix)
	assert.Equal(t, 0, res.Statements[0].Line)
	assert.Equal(t, "http://a.org/", res.Statements[1].Namespace.Base)
	assert.Equal(t, "http://b.org/", res.Statements[2].Namespace.Base)
	assert.Equal(t, KindReified, res.Statements[3].Kind, "frontmatter mode enables reification")
}

func TestScan_Deterministic(t *testing.T) {
	blocks := []document.Block{
		para("[ex]: http://example.org/\n[A]{typeof=ex:T; name=\"a\"}"),
		&document.Heading{Level: 2, Text: "SHACL Constraint: c"},
		&document.Code{Lang: "sparql", Body: "ASK {}"},
	}
	assert.Equal(t, ScanBlocks(blocks), ScanBlocks(blocks))
}
