// Package export serializes graphs as Turtle, JSON-LD and N-Quads, and
// reads those formats back.
//
// Writers are total over valid graphs: every identifier is compacted to a
// prefixed name when a registered namespace allows it and written in full
// otherwise. Serialization fails as a whole, with ErrInvalidIRI or
// ErrInvalidLiteral, when a term cannot be represented; nothing is written
// in that case.
//
// The readers cover what the writers produce plus the common Turtle and
// JSON-LD shapes found in hand-written ontology files. They are not
// general-purpose parsers.
package export
