package document

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// HTMLParser converts HTML pages to Markdown and parses the result, so
// notation published on a rendered site can be read back.
type HTMLParser struct {
	converter *md.Converter
	markdown  *MarkdownParser
}

// NewHTMLParser creates a new HTML parser.
func NewHTMLParser() *HTMLParser {
	// Escaping would turn "[ex]: ..." into "\[ex\]: ..." and hide every
	// declaration from the scanner.
	converter := md.NewConverter("", true, &md.Options{
		EscapeMode:     "disabled",
		CodeBlockStyle: "fenced",
		Fence:          "```",
	})
	converter.Use(plugin.GitHubFlavored())

	return &HTMLParser{
		converter: converter,
		markdown:  NewMarkdownParser(),
	}
}

// Parse converts the HTML content and parses it as Markdown.
func (p *HTMLParser) Parse(filename string, content []byte) (*Document, error) {
	title := extractHTMLTitle(content)

	cleaned := scriptRe.ReplaceAllString(string(content), "")
	cleaned = styleRe.ReplaceAllString(cleaned, "")

	markdown, err := p.converter.ConvertString(cleaned)
	if err != nil {
		return nil, err
	}
	markdown = excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n")

	doc, err := p.markdown.Parse(filename, []byte(markdown))
	if err != nil {
		return nil, err
	}
	doc.ID = generateID(filename, content)
	if title != "" {
		doc.Title = title
	}
	return doc, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *HTMLParser) CanParse(mimeType string) bool {
	switch mimeType {
	case "text/html", "application/xhtml+xml":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *HTMLParser) MimeType() string {
	return "text/html"
}

// extractHTMLTitle extracts the title from HTML.
func extractHTMLTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return title
}
