// Package vocabulary defines the namespace IRIs and well-known terms used when
// converting Markdown-LD documents to RDF.
//
// The default prefix table mirrors the namespaces an author gets for free in
// every document: the fallback "ex" namespace for bare labels, a "doc"
// namespace for document metadata, and the W3C vocabularies needed to express
// types, labels and reification.
package vocabulary
