package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "---\n" +
	"mode: rdf-star\n" +
	"namespaces:\n" +
	"  foaf: http://xmlns.com/foaf/0.1/\n" +
	"---\n" +
	"# Title\n" +
	"\n" +
	"[ex]: http://example.org/\n" +
	"[Doc]{typeof=ex:Document}\n" +
	"\n" +
	"## SHACL Constraint: hasName\n" +
	"\n" +
	"```sparql\n" +
	"SELECT ?this WHERE { ?this a ex:Document }\n" +
	"```\n" +
	"\n" +
	"- [Item]{typeof=ex:Thing}\n" +
	"\n" +
	"> [Quoted]{typeof=ex:Thing}\n"

func TestMarkdownParser_Blocks(t *testing.T) {
	p := NewMarkdownParser()

	doc, err := p.Parse("notes/ontology.md", []byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "ontology.md", doc.Filename)
	assert.Equal(t, "Title", doc.Title)
	require.Len(t, doc.Blocks, 6)

	h, ok := doc.Blocks[0].(*Heading)
	require.True(t, ok)
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, "Title", h.Text)
	assert.Equal(t, 6, h.Line, "line numbers count the frontmatter")

	para, ok := doc.Blocks[1].(*Paragraph)
	require.True(t, ok, "link reference definitions must stay paragraphs")
	assert.Equal(t, "[ex]: http://example.org/\n[Doc]{typeof=ex:Document}", para.Text)
	assert.Equal(t, 8, para.Line)

	h2, ok := doc.Blocks[2].(*Heading)
	require.True(t, ok)
	assert.Equal(t, 2, h2.Level)
	assert.Equal(t, "SHACL Constraint: hasName", h2.Text)

	code, ok := doc.Blocks[3].(*Code)
	require.True(t, ok)
	assert.Equal(t, "sparql", code.Lang)
	assert.Contains(t, code.Body, "SELECT ?this WHERE")
	assert.Equal(t, 13, code.Line)

	list, ok := doc.Blocks[4].(*Container)
	require.True(t, ok)
	assert.Equal(t, ContainerList, list.Kind)
	require.Len(t, list.Children, 1)
	item, ok := list.Children[0].(*Container)
	require.True(t, ok)
	assert.Equal(t, ContainerItem, item.Kind)
	require.Len(t, item.Children, 1)
	itemPara, ok := item.Children[0].(*Paragraph)
	require.True(t, ok)
	assert.Equal(t, "[Item]{typeof=ex:Thing}", itemPara.Text)

	quote, ok := doc.Blocks[5].(*Container)
	require.True(t, ok)
	assert.Equal(t, ContainerBlockquote, quote.Kind)
}

func TestMarkdownParser_Frontmatter(t *testing.T) {
	doc, err := NewMarkdownParser().Parse("x.md", []byte(sampleDoc))
	require.NoError(t, err)

	assert.True(t, doc.HasFrontmatter())
	assert.Equal(t, "rdf-star", doc.FrontmatterMode())

	ns := doc.FrontmatterNamespaces()
	require.Len(t, ns, 1)
	assert.Equal(t, "foaf", ns[0].Name)
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", ns[0].Base)
	assert.NotContains(t, doc.Body, "namespaces:")
}

func TestMarkdownParser_BadFrontmatterKeepsBody(t *testing.T) {
	content := "---\nnot: [closed\n---\n[Doc]{typeof=ex:Document}\n"

	doc, err := NewMarkdownParser().Parse("x.md", []byte(content))
	require.NoError(t, err)
	assert.False(t, doc.HasFrontmatter())
	assert.Equal(t, content, doc.Body)
}

func TestMarkdownParser_StableID(t *testing.T) {
	p := NewMarkdownParser()
	a, err := p.Parse("My Notes.md", []byte("hello"))
	require.NoError(t, err)
	b, err := p.Parse("My Notes.md", []byte("hello"))
	require.NoError(t, err)
	c, err := p.Parse("My Notes.md", []byte("changed"))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Contains(t, a.ID, "doc.my-notes.")
}

func TestWalkVisitsNestedBlocks(t *testing.T) {
	doc, err := NewMarkdownParser().Parse("x.md", []byte(sampleDoc))
	require.NoError(t, err)

	var paragraphs []string
	Walk(doc.Blocks, func(b Block) {
		if p, ok := b.(*Paragraph); ok {
			paragraphs = append(paragraphs, p.Text)
		}
	})
	assert.Contains(t, paragraphs, "[Item]{typeof=ex:Thing}")
	assert.Contains(t, paragraphs, "[Quoted]{typeof=ex:Thing}")
}
