package scanner

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/c360studio/semweave/document"
	"github.com/c360studio/semweave/namespace"
)

var (
	modeHeadingRe       = regexp.MustCompile(`^Mode:\s*(\S+)\s*$`)
	constraintHeadingRe = regexp.MustCompile(`^SHACL Constraint:\s*(.+?)\s*$`)
	namespaceRe         = regexp.MustCompile(`^\[([^\]]+)\]:\s*(\S+)\s*$`)
	entityRe            = regexp.MustCompile(`^\[([^\]]+)\]\{(.*)\}`)
	reifiedRe           = regexp.MustCompile(`^<<\s*\[([^\]]+)\]\s+(\S+?):?\s*\[([^\]]+)\]\s*>>\s*(.*)$`)
)

// directiveLevel is the heading level that carries mode and constraint
// directives.
const directiveLevel = 2

// Result is the outcome of scanning one document.
type Result struct {
	// Statements in document order.
	Statements []Statement

	// Mode in effect at the end of the document.
	Mode Mode

	// Diagnostics about skipped input.
	Diagnostics []Diagnostic
}

// Count returns the number of statements of kind k.
func (r *Result) Count(k Kind) int {
	n := 0
	for _, s := range r.Statements {
		if s.Kind == k {
			n++
		}
	}
	return n
}

// Option configures a scan.
type Option func(*scanner)

// WithMode sets the initial mode. Frontmatter and directives override it.
func WithMode(m Mode) Option {
	return func(s *scanner) { s.mode = m }
}

// WithLogger sets the logger used for per-block debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

type scanner struct {
	mode   Mode
	logger *slog.Logger
	result Result
}

// Scan classifies the blocks of doc. Frontmatter namespaces become leading
// namespace statements and a frontmatter mode sets the initial mode.
func Scan(doc *document.Document, opts ...Option) *Result {
	s := newScanner(opts)

	for _, p := range doc.FrontmatterNamespaces() {
		s.namespace(0, p.Name, p.Base, "frontmatter")
	}
	if raw := doc.FrontmatterMode(); raw != "" {
		if m, ok := ParseMode(raw); ok {
			s.mode = m
		} else {
			s.diag(DiagFrontmatterIgnored, 0, "unknown frontmatter mode "+raw, raw)
		}
	}

	return s.run(doc.Blocks)
}

// ScanBlocks classifies a bare block list.
func ScanBlocks(blocks []document.Block, opts ...Option) *Result {
	return newScanner(opts).run(blocks)
}

func newScanner(opts []Option) *scanner {
	s := &scanner{mode: ModeStandard, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scanner) run(blocks []document.Block) *Result {
	s.blocks(blocks)
	s.result.Mode = s.mode
	return &s.result
}

// blocks walks one sibling list. Adjacency (a constraint heading followed by
// its query) is only ever checked between siblings.
func (s *scanner) blocks(list []document.Block) {
	for i, b := range list {
		switch v := b.(type) {
		case *document.Heading:
			var next document.Block
			if i+1 < len(list) {
				next = list[i+1]
			}
			s.heading(v, next)
		case *document.Paragraph:
			s.paragraph(v)
		case *document.Container:
			s.blocks(v.Children)
		}
	}
}

func (s *scanner) heading(h *document.Heading, next document.Block) {
	if h.Level != directiveLevel {
		return
	}

	if m := modeHeadingRe.FindStringSubmatch(h.Text); m != nil {
		mode, ok := ParseMode(m[1])
		if !ok {
			s.diag(DiagUnknownMode, h.Line, "unknown mode "+m[1], h.Text)
			return
		}
		s.mode = mode
		s.emit(Statement{Kind: KindMode, Line: h.Line, Mode: &ModeDirective{Mode: mode}})
		return
	}

	if m := constraintHeadingRe.FindStringSubmatch(h.Text); m != nil {
		code, ok := next.(*document.Code)
		if !ok || !strings.EqualFold(code.Lang, "sparql") {
			s.diag(DiagConstraintNoQuery, h.Line,
				"constraint "+m[1]+" is not followed by a sparql code block", h.Text)
			return
		}
		s.emit(Statement{
			Kind:       KindConstraint,
			Line:       h.Line,
			Constraint: &ConstraintDecl{ID: m[1], Body: code.Body},
		})
	}
}

// paragraph classifies each line on its own, so a namespace declaration
// directly followed by an entity line yields both.
func (s *scanner) paragraph(p *document.Paragraph) {
	for i, line := range strings.Split(p.Text, "\n") {
		s.line(strings.TrimSpace(line), lineNumber(p.Line, i))
	}
}

func (s *scanner) line(text string, line int) {
	switch {
	case text == "":
		return
	case strings.HasPrefix(text, "<<"):
		s.reified(text, line)
	case strings.HasPrefix(text, "["):
		if m := namespaceRe.FindStringSubmatch(text); m != nil {
			s.namespace(line, m[1], m[2], text)
			return
		}
		// Text after the last closing brace is prose and is ignored.
		if m := entityRe.FindStringSubmatch(text); m != nil {
			s.entity(m[1], m[2], line)
			return
		}
		if strings.Contains(text, "]{") {
			s.diag(DiagMalformedEntity, line, "entity declaration is missing its closing brace", text)
		}
	}
}

func (s *scanner) namespace(line int, prefix, base, text string) {
	if !namespace.ValidPrefix(prefix) {
		s.diag(DiagInvalidNamespace, line, "invalid namespace prefix "+prefix, text)
		return
	}
	s.emit(Statement{
		Kind:      KindNamespace,
		Line:      line,
		Namespace: &NamespaceDecl{Prefix: prefix, Base: base},
	})
}

func (s *scanner) entity(label, body string, line int) {
	decl := &EntityDecl{Label: strings.TrimSpace(label)}
	for _, tok := range splitAttrs(body) {
		attr, ok := parseAttr(tok)
		if !ok {
			s.diag(DiagMalformedAttr, line, "attribute "+tok+" is not key=value", tok)
			continue
		}
		decl.Attrs = append(decl.Attrs, attr)
	}
	s.emit(Statement{Kind: KindEntity, Line: line, Entity: decl})
}

func (s *scanner) reified(text string, line int) {
	if s.mode != ModeRDFStar {
		s.diag(DiagReifiedInStandard, line, "reified triple ignored outside rdf-star mode", text)
		return
	}
	m := reifiedRe.FindStringSubmatch(text)
	if m == nil {
		s.diag(DiagMalformedReified, line, "reified triple does not match <<[S] p: [O]>>", text)
		return
	}

	decl := &ReifiedDecl{
		Subject:   strings.TrimSpace(m[1]),
		Predicate: m[2],
		Object:    strings.TrimSpace(m[3]),
	}
	for _, part := range splitOutsideQuotes(m[4], ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		attr, ok := parseAnnotation(part)
		if !ok {
			s.diag(DiagMalformedAttr, line, "annotation "+part+" is not key:value", part)
			continue
		}
		decl.Annotations = append(decl.Annotations, attr)
	}
	s.emit(Statement{Kind: KindReified, Line: line, Reified: decl})
}

func (s *scanner) emit(st Statement) {
	s.logger.Debug("Recognized statement", "line", st.Line, "statement", st.String())
	s.result.Statements = append(s.result.Statements, st)
}

func (s *scanner) diag(kind DiagnosticKind, line int, msg, text string) {
	s.logger.Debug("Skipped construct", "line", line, "kind", string(kind), "text", text)
	s.result.Diagnostics = append(s.result.Diagnostics, Diagnostic{
		Kind:    kind,
		Line:    line,
		Message: msg,
		Text:    text,
	})
}

func lineNumber(start, offset int) int {
	if start == 0 {
		return 0
	}
	return start + offset
}
