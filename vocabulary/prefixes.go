package vocabulary

// Prefix is a short name bound to a namespace base.
type Prefix struct {
	Name string `yaml:"name" json:"name"`
	Base string `yaml:"base" json:"base"`
}

// DefaultPrefixes returns the namespaces every conversion starts with, in
// declaration order. Documents may overwrite any of them.
func DefaultPrefixes() []Prefix {
	return []Prefix{
		{Name: FallbackPrefix, Base: ExampleNamespace},
		{Name: "doc", Base: DocNamespace},
		{Name: "rdf", Base: RDF},
		{Name: "rdfs", Base: RDFS},
		{Name: "owl", Base: OWL},
		{Name: "xsd", Base: XSD},
		{Name: "oa", Base: OA},
	}
}

// WellKnownPrefixes returns a larger table used when compacting IRIs read
// from external sources that did not declare their own prefixes.
func WellKnownPrefixes() []Prefix {
	return append(DefaultPrefixes(),
		Prefix{Name: "dc", Base: DC},
		Prefix{Name: "skos", Base: SKOS},
		Prefix{Name: "prov", Base: PROV},
		Prefix{Name: "schema", Base: Schema},
	)
}
