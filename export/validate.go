package export

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/c360studio/semweave/rdf"
)

var (
	// ErrUnsupportedFormat is returned for an unknown format name.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidIRI is returned when an identifier cannot be written as an
	// IRI in any of the output formats.
	ErrInvalidIRI = errors.New("invalid IRI")

	// ErrInvalidLiteral is returned for literals that are not valid UTF-8.
	ErrInvalidLiteral = errors.New("invalid literal")

	// ErrSyntax is returned by the readers for malformed input.
	ErrSyntax = errors.New("syntax error")
)

// iriForbidden are the characters IRIREF excludes besides control
// characters and space.
const iriForbidden = "<>\"{}|^`\\"

// Validate checks every term of g for serializability.
func Validate(g *rdf.Graph) error {
	for _, q := range g.Quads() {
		for _, t := range []rdf.Term{q.Subject, q.Predicate, q.Object, q.Graph} {
			if err := validateTerm(t); err != nil {
				return fmt.Errorf("%s: %w", q, err)
			}
		}
	}
	return nil
}

func validateTerm(t rdf.Term) error {
	switch t.Kind {
	case rdf.KindIRI:
		return ValidateIRI(t.Value)
	case rdf.KindLiteral:
		if !utf8.ValidString(t.Value) || !utf8.ValidString(t.Lang) {
			return fmt.Errorf("%w: not valid UTF-8", ErrInvalidLiteral)
		}
		if t.Datatype != "" {
			return ValidateIRI(t.Datatype)
		}
	case rdf.KindBlank:
		if t.Value == "" || strings.ContainsAny(t.Value, " \t\r\n") {
			return fmt.Errorf("%w: blank node label %q", ErrInvalidIRI, t.Value)
		}
	}
	return nil
}

// ValidateIRI rejects empty IRIs and IRIs holding characters that no
// serializer can escape.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("%w: empty", ErrInvalidIRI)
	}
	if !utf8.ValidString(iri) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidIRI, iri)
	}
	for _, r := range iri {
		if r <= 0x20 || strings.ContainsRune(iriForbidden, r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidIRI, iri, r)
		}
	}
	return nil
}
