package export

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/vocabulary"
)

// pnPrefix is the Turtle PN_PREFIX subset a prefix must match to be used
// in prefixed names. Other registered prefixes fall back to full IRIs.
var pnPrefix = regexp.MustCompile(`^[A-Za-z]([A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)

// TurtleWriter writes RDF in Turtle format. Subjects are grouped and
// @prefix lines are emitted only for prefixes the body uses.
type TurtleWriter struct {
	reg  *namespace.Registry
	used map[string]string
	body strings.Builder
}

// NewTurtleWriter creates a writer compacting IRIs against reg.
func NewTurtleWriter(reg *namespace.Registry) *TurtleWriter {
	compact := namespace.New(reg.FallbackBase())
	for _, p := range reg.Prefixes() {
		if pnPrefix.MatchString(p.Name) {
			compact.Declare(p.Name, p.Base)
		}
	}
	return &TurtleWriter{reg: compact, used: make(map[string]string)}
}

// WriteSubject writes one subject block with its predicate/object pairs.
// rdf:type is written as "a".
func (w *TurtleWriter) WriteSubject(subject rdf.Term, pairs []rdf.Triple) {
	w.body.WriteString(w.term(subject))
	w.body.WriteString("\n")
	for i, t := range pairs {
		pred := "a"
		if t.Predicate.Value != vocabulary.RDFType {
			pred = w.term(t.Predicate)
		}
		terminator := " ;"
		if i == len(pairs)-1 {
			terminator = " ."
		}
		fmt.Fprintf(&w.body, "    %s %s%s\n", pred, w.term(t.Object), terminator)
	}
	w.body.WriteString("\n")
}

// WriteTo writes the used prefixes, sorted, followed by the body.
func (w *TurtleWriter) WriteTo(out io.Writer) (int64, error) {
	var sb strings.Builder
	keys := make([]string, 0, len(w.used))
	for k := range w.used {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, prefix := range keys {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", prefix, w.used[prefix])
	}
	if len(keys) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString(strings.TrimRight(w.body.String(), "\n"))
	sb.WriteString("\n")

	n, err := io.WriteString(out, sb.String())
	return int64(n), err
}

func (w *TurtleWriter) term(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindIRI:
		return w.iri(t.Value)
	case rdf.KindBlank:
		return "_:" + t.Value
	case rdf.KindLiteral:
		s := `"` + rdf.EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" {
			return s + "^^" + w.iri(t.Datatype)
		}
		return s
	default:
		return ""
	}
}

func (w *TurtleWriter) iri(iri string) string {
	prefix, local, ok := w.reg.Split(iri)
	if !ok {
		return "<" + iri + ">"
	}
	base, _ := w.reg.Lookup(prefix)
	w.used[prefix] = base
	return prefix + ":" + local
}

// writeTurtle drops graph labels: a reified base triple is written as a
// plain triple and its annotations stay on the context identifier. Type
// assertions lead each subject block.
func writeTurtle(out io.Writer, g *rdf.Graph, reg *namespace.Registry) error {
	w := NewTurtleWriter(reg)

	var order []rdf.Term
	bySubject := make(map[rdf.Term][]rdf.Triple)
	for _, t := range g.Triples() {
		if _, ok := bySubject[t.Subject]; !ok {
			order = append(order, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}
	for _, s := range order {
		pairs := bySubject[s]
		sort.SliceStable(pairs, func(i, j int) bool {
			return pairs[i].Predicate.Value == vocabulary.RDFType && pairs[j].Predicate.Value != vocabulary.RDFType
		})
		w.WriteSubject(s, pairs)
	}

	_, err := w.WriteTo(out)
	return err
}
