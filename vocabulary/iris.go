package vocabulary

// Standard namespace IRIs.
const (
	RDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS   = "http://www.w3.org/2000/01/rdf-schema#"
	OWL    = "http://www.w3.org/2002/07/owl#"
	XSD    = "http://www.w3.org/2001/XMLSchema#"
	DC     = "http://purl.org/dc/terms/"
	SKOS   = "http://www.w3.org/2004/02/skos/core#"
	PROV   = "http://www.w3.org/ns/prov#"
	OA     = "http://www.w3.org/ns/oa#"
	Schema = "http://schema.org/"
)

// ExampleNamespace is the base used for bare labels and undeclared prefixes
// when a document does not declare its own "ex" namespace.
const ExampleNamespace = "http://example.org/"

// DocNamespace is the base for document metadata terms.
const DocNamespace = "http://example.org/doc/"

// FallbackPrefix names the namespace that absorbs bare labels.
const FallbackPrefix = "ex"

// Term IRIs used by the graph builder and serializers.
const (
	// RDFType is rdf:type, emitted for the reserved typeof attribute.
	RDFType = RDF + "type"

	// RDFStatement is the class of reified statements.
	RDFStatement = RDF + "Statement"

	RDFSResource = RDFS + "Resource"
	RDFSLabel    = RDFS + "label"

	XSDString  = XSD + "string"
	XSDInteger = XSD + "integer"
	XSDDecimal = XSD + "decimal"
	XSDDouble  = XSD + "double"
	XSDBoolean = XSD + "boolean"
)
