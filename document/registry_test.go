package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetByExtension(t *testing.T) {
	r := NewRegistry()

	assert.IsType(t, &MarkdownParser{}, r.GetByExtension("a.md"))
	assert.IsType(t, &MarkdownParser{}, r.GetByExtension("a.MARKDOWN"))
	assert.IsType(t, &MarkdownParser{}, r.GetByExtension("a.txt"))
	assert.IsType(t, &HTMLParser{}, r.GetByExtension("a.html"))
	assert.Nil(t, r.GetByExtension("a.pdf"))
	assert.True(t, r.Supported("notes.md"))
	assert.False(t, r.Supported("data.ttl"))
}

func TestRegistry_ParseUnknownType(t *testing.T) {
	_, err := NewRegistry().Parse("image.png", []byte{0x89})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoParser))
}

func TestHTMLParser_Parse(t *testing.T) {
	page := `<html><head><title>Ontology</title><script>var x = 1;</script></head>
<body>
<h2>Mode: rdf-star</h2>
<p>[ex]: http://example.org/</p>
<pre><code class="language-sparql">SELECT ?this WHERE { ?this ?p ?o }</code></pre>
</body></html>`

	doc, err := NewHTMLParser().Parse("site/index.html", []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Ontology", doc.Title)

	var heading *Heading
	var para *Paragraph
	var code *Code
	Walk(doc.Blocks, func(b Block) {
		switch v := b.(type) {
		case *Heading:
			heading = v
		case *Paragraph:
			para = v
		case *Code:
			code = v
		}
	})

	require.NotNil(t, heading)
	assert.Equal(t, 2, heading.Level)
	assert.Equal(t, "Mode: rdf-star", heading.Text)
	require.NotNil(t, para)
	assert.Equal(t, "[ex]: http://example.org/", para.Text)
	require.NotNil(t, code)
	assert.Equal(t, "sparql", code.Lang)
	assert.NotContains(t, doc.Body, "var x")
}
