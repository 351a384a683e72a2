// Package scanner recognizes Markdown-LD constructs in a document block tree.
//
// The scanner only classifies and tokenizes: it never resolves names and
// never fails. Input it cannot use is skipped and, where the author likely
// meant something, reported as a Diagnostic.
package scanner

import "fmt"

// Mode gates recognition of reified-triple statements.
type Mode string

// Modes.
const (
	ModeStandard Mode = "standard"
	ModeRDFStar  Mode = "rdf-star"
)

// ParseMode converts a directive value to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeStandard, ModeRDFStar:
		return Mode(s), true
	default:
		return "", false
	}
}

// Kind classifies a statement.
type Kind string

// Statement kinds.
const (
	KindNamespace  Kind = "namespace"
	KindMode       Kind = "mode"
	KindEntity     Kind = "entity"
	KindReified    Kind = "reified"
	KindConstraint Kind = "constraint"
)

// Attr is a key/value pair. Quoted values are literals; unquoted values
// are identifiers resolved by the builder.
type Attr struct {
	Key    string
	Value  string
	Quoted bool
}

// Statement is one recognized construct. Exactly one of the payload fields
// is set, matching Kind.
type Statement struct {
	Kind Kind
	Line int

	Namespace  *NamespaceDecl
	Mode       *ModeDirective
	Entity     *EntityDecl
	Reified    *ReifiedDecl
	Constraint *ConstraintDecl
}

// NamespaceDecl is "[prefix]: base".
type NamespaceDecl struct {
	Prefix string
	Base   string
}

// ModeDirective is a "## Mode: ..." heading.
type ModeDirective struct {
	Mode Mode
}

// EntityDecl is "[Label]{key=value ...}".
type EntityDecl struct {
	Label string
	Attrs []Attr
}

// ReifiedDecl is "<<[S] p: [O]>> key:value; ...".
type ReifiedDecl struct {
	Subject     string
	Predicate   string
	Object      string
	Annotations []Attr
}

// ConstraintDecl is a "## SHACL Constraint: id" heading with its query.
type ConstraintDecl struct {
	ID   string
	Body string
}

// String renders the statement for logs.
func (s Statement) String() string {
	switch s.Kind {
	case KindNamespace:
		return fmt.Sprintf("namespace %s -> %s", s.Namespace.Prefix, s.Namespace.Base)
	case KindMode:
		return fmt.Sprintf("mode %s", s.Mode.Mode)
	case KindEntity:
		return fmt.Sprintf("entity [%s] (%d attrs)", s.Entity.Label, len(s.Entity.Attrs))
	case KindReified:
		return fmt.Sprintf("reified <<[%s] %s [%s]>> (%d annotations)",
			s.Reified.Subject, s.Reified.Predicate, s.Reified.Object, len(s.Reified.Annotations))
	case KindConstraint:
		return fmt.Sprintf("constraint %s", s.Constraint.ID)
	default:
		return string(s.Kind)
	}
}

// DiagnosticKind classifies a skipped construct.
type DiagnosticKind string

// Diagnostic kinds.
const (
	DiagMalformedAttr      DiagnosticKind = "malformed-attribute"
	DiagMalformedEntity    DiagnosticKind = "malformed-entity"
	DiagMalformedReified   DiagnosticKind = "malformed-reified"
	DiagReifiedInStandard  DiagnosticKind = "reified-in-standard-mode"
	DiagConstraintNoQuery  DiagnosticKind = "constraint-without-query"
	DiagUnknownMode        DiagnosticKind = "unknown-mode"
	DiagInvalidNamespace   DiagnosticKind = "invalid-namespace"
	DiagFrontmatterIgnored DiagnosticKind = "frontmatter-ignored"
)

// Diagnostic is a non-fatal warning about input that was skipped.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Line    int            `json:"line,omitempty"`
	Message string         `json:"message"`
	Text    string         `json:"text,omitempty"`
}

// String renders the diagnostic as "line N: message".
func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, d.Message)
	}
	return d.Message
}
