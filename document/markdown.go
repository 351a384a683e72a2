package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// MarkdownParser parses Markdown documents with optional YAML frontmatter
// into a block tree.
type MarkdownParser struct {
	md parser.Parser
}

// NewMarkdownParser creates a new markdown parser.
//
// The paragraph transformers are not installed, so link reference
// definitions such as "[ex]: http://example.org/" stay paragraphs.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		md: parser.NewParser(
			parser.WithBlockParsers(parser.DefaultBlockParsers()...),
			parser.WithInlineParsers(parser.DefaultInlineParsers()...),
		),
	}
}

// Parse parses a markdown document, extracting frontmatter and blocks.
func (p *MarkdownParser) Parse(filename string, content []byte) (*Document, error) {
	doc := &Document{
		ID:       generateID(filename, content),
		Filename: filepath.Base(filename),
	}

	str := string(content)
	lineOffset := 0
	if strings.HasPrefix(str, "---\n") || strings.HasPrefix(str, "---\r\n") {
		frontmatter, body, err := extractFrontmatter(str)
		if err != nil {
			// If frontmatter parsing fails, treat entire content as body
			doc.Body = str
		} else {
			doc.Frontmatter = frontmatter
			doc.Body = body
			lineOffset = strings.Count(str[:len(str)-len(body)], "\n")
		}
	} else {
		doc.Body = str
	}

	src := []byte(doc.Body)
	root := p.md.Parse(text.NewReader(src))
	conv := blockConverter{src: src, lineOffset: lineOffset}
	doc.Blocks = conv.children(root)

	if doc.Title == "" {
		for _, b := range doc.Blocks {
			if h, ok := b.(*Heading); ok && h.Level == 1 {
				doc.Title = h.Text
				break
			}
		}
	}

	return doc, nil
}

// CanParse returns true if this parser can handle the given MIME type.
func (p *MarkdownParser) CanParse(mimeType string) bool {
	switch mimeType {
	case "text/markdown", "text/x-markdown", "text/plain":
		return true
	default:
		return false
	}
}

// MimeType returns the primary MIME type for this parser.
func (p *MarkdownParser) MimeType() string {
	return "text/markdown"
}

// blockConverter maps goldmark nodes onto the Block variant set.
type blockConverter struct {
	src        []byte
	lineOffset int
}

func (c blockConverter) children(n ast.Node) []Block {
	var out []Block
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if b := c.convert(child); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func (c blockConverter) convert(n ast.Node) Block {
	switch v := n.(type) {
	case *ast.Heading:
		return &Heading{
			Level: v.Level,
			Text:  strings.TrimSpace(c.joinLines(v.Lines())),
			Line:  c.line(v.Lines()),
		}
	case *ast.Paragraph, *ast.TextBlock:
		return &Paragraph{
			Text: strings.TrimSpace(c.joinLines(n.Lines())),
			Line: c.line(n.Lines()),
		}
	case *ast.FencedCodeBlock:
		var lang string
		if v.Info != nil {
			lang = string(v.Language(c.src))
		}
		return &Code{
			Lang: lang,
			Body: c.rawLines(v.Lines()),
			Line: c.fenceLine(v),
		}
	case *ast.CodeBlock:
		return &Code{
			Body: c.rawLines(v.Lines()),
			Line: c.line(v.Lines()),
		}
	case *ast.List:
		return c.container(ContainerList, n)
	case *ast.ListItem:
		return c.container(ContainerItem, n)
	case *ast.Blockquote:
		return c.container(ContainerBlockquote, n)
	default:
		return nil
	}
}

func (c blockConverter) container(kind ContainerKind, n ast.Node) Block {
	children := c.children(n)
	line := 0
	if len(children) > 0 {
		line = children[0].StartLine()
	}
	return &Container{Kind: kind, Children: children, Line: line}
}

// joinLines joins segment lines with "\n", dropping line terminators.
func (c blockConverter) joinLines(lines *text.Segments) string {
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimRight(string(seg.Value(c.src)), "\r\n"))
	}
	return strings.Join(parts, "\n")
}

// rawLines concatenates segments verbatim, as code bodies need.
func (c blockConverter) rawLines(lines *text.Segments) string {
	var buf bytes.Buffer
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return buf.String()
}

func (c blockConverter) line(lines *text.Segments) int {
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return c.lineAt(lines.At(0).Start)
}

// fenceLine locates the opening fence, which sits on the line before the
// first body line.
func (c blockConverter) fenceLine(n *ast.FencedCodeBlock) int {
	if n.Info != nil {
		return c.lineAt(n.Info.Segment.Start)
	}
	if n.Lines().Len() > 0 {
		return c.lineAt(n.Lines().At(0).Start) - 1
	}
	return 0
}

func (c blockConverter) lineAt(offset int) int {
	if offset > len(c.src) {
		offset = len(c.src)
	}
	return c.lineOffset + bytes.Count(c.src[:offset], []byte("\n")) + 1
}

// extractFrontmatter parses YAML frontmatter from markdown content.
// Returns the parsed frontmatter map, the remaining body, and any error.
func extractFrontmatter(content string) (map[string]any, string, error) {
	const delimiter = "---"

	// Skip the opening delimiter
	start := len(delimiter)
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	// Find the closing delimiter
	closeIdx := strings.Index(content[start:], "\n"+delimiter)
	if closeIdx == -1 {
		return nil, content, fmt.Errorf("no closing frontmatter delimiter")
	}

	yamlContent := content[start : start+closeIdx]

	// Find where the body starts (after closing delimiter and newline)
	bodyStart := start + closeIdx + 1 + len(delimiter)
	for bodyStart < len(content) && (content[bodyStart] == '\n' || content[bodyStart] == '\r') {
		bodyStart++
	}

	body := ""
	if bodyStart < len(content) {
		body = content[bodyStart:]
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &frontmatter); err != nil {
		return nil, content, fmt.Errorf("parse YAML frontmatter: %w", err)
	}

	return frontmatter, body, nil
}

// generateID creates a stable document ID from filename and content hash.
func generateID(filename string, content []byte) string {
	base := filepath.Base(filename)
	name := sanitizeID(strings.TrimSuffix(base, filepath.Ext(base)))

	hash := sha256.Sum256(content)
	shortHash := hex.EncodeToString(hash[:])[:12]

	return fmt.Sprintf("doc.%s.%s", name, shortHash)
}

// sanitizeID makes a string safe for use as an identifier.
func sanitizeID(s string) string {
	var buf bytes.Buffer
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			buf.WriteRune(r)
		case r >= '0' && r <= '9':
			buf.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			buf.WriteRune('-')
		}
	}
	return buf.String()
}

// ContentHash computes a SHA256 hash of the content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
