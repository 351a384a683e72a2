// Package document turns source files into the block tree the notation
// scanner walks: headings, paragraphs, fenced code and nested containers.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/semweave/vocabulary"
)

// ErrNoParser is returned when no parser handles a file type.
var ErrNoParser = errors.New("no parser for file type")

// Block is one node of the document tree. The concrete types are Heading,
// Paragraph, Code and Container.
type Block interface {
	block()
	// StartLine is the 1-based source line of the block.
	StartLine() int
}

// Heading is a section heading.
type Heading struct {
	Level int
	Text  string
	Line  int
}

// Paragraph is a run of inline text. Lines are joined with "\n".
type Paragraph struct {
	Text string
	Line int
}

// Code is a fenced or indented code block.
type Code struct {
	Lang string
	Body string
	Line int
}

// ContainerKind names the structure that groups child blocks.
type ContainerKind string

// Container kinds.
const (
	ContainerList       ContainerKind = "list"
	ContainerItem       ContainerKind = "item"
	ContainerBlockquote ContainerKind = "blockquote"
)

// Container groups nested blocks such as list items and blockquotes.
type Container struct {
	Kind     ContainerKind
	Children []Block
	Line     int
}

func (*Heading) block()   {}
func (*Paragraph) block() {}
func (*Code) block()      {}
func (*Container) block() {}

// StartLine returns the heading's source line.
func (h *Heading) StartLine() int { return h.Line }

// StartLine returns the paragraph's first source line.
func (p *Paragraph) StartLine() int { return p.Line }

// StartLine returns the code block's opening line.
func (c *Code) StartLine() int { return c.Line }

// StartLine returns the container's first line.
func (c *Container) StartLine() int { return c.Line }

// Document is a parsed source file.
type Document struct {
	// ID is a stable identifier derived from the filename and content hash.
	ID string `json:"id"`

	// Filename is the base name of the source file.
	Filename string `json:"filename"`

	// Title is taken from the HTML title or the first level-one heading.
	Title string `json:"title,omitempty"`

	// Frontmatter contains parsed YAML frontmatter if present.
	Frontmatter map[string]any `json:"frontmatter,omitempty"`

	// Body is the Markdown content without frontmatter.
	Body string `json:"body"`

	// Blocks are the top-level blocks in document order.
	Blocks []Block `json:"-"`
}

// HasFrontmatter returns true if the document has parsed frontmatter.
func (d *Document) HasFrontmatter() bool {
	return len(d.Frontmatter) > 0
}

// FrontmatterNamespaces returns the prefixes declared under the
// "namespaces" frontmatter key, sorted by prefix.
func (d *Document) FrontmatterNamespaces() []vocabulary.Prefix {
	raw, ok := d.Frontmatter["namespaces"].(map[string]any)
	if !ok {
		return nil
	}
	out := make([]vocabulary.Prefix, 0, len(raw))
	for name, base := range raw {
		s, ok := base.(string)
		if !ok {
			continue
		}
		out = append(out, vocabulary.Prefix{Name: name, Base: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FrontmatterMode returns the "mode" frontmatter value, if any.
func (d *Document) FrontmatterMode() string {
	s, _ := d.Frontmatter["mode"].(string)
	return strings.TrimSpace(s)
}

// Walk calls fn for every block depth-first, in document order.
func Walk(blocks []Block, fn func(Block)) {
	for _, b := range blocks {
		fn(b)
		if c, ok := b.(*Container); ok {
			Walk(c.Children, fn)
		}
	}
}

// String renders a block for debugging.
func String(b Block) string {
	switch v := b.(type) {
	case *Heading:
		return fmt.Sprintf("heading(%d) %q", v.Level, v.Text)
	case *Paragraph:
		return fmt.Sprintf("paragraph %q", v.Text)
	case *Code:
		return fmt.Sprintf("code(%s) %q", v.Lang, v.Body)
	case *Container:
		return fmt.Sprintf("%s[%d]", v.Kind, len(v.Children))
	default:
		return "unknown"
	}
}
