package export

import "fmt"

// JSONLDToTurtle re-serializes a JSON-LD document as Turtle, reusing its
// @context prefixes. Named-graph labels are dropped as Turtle has none.
func JSONLDToTurtle(data []byte) (string, error) {
	g, reg, err := ParseJSONLD(data)
	if err != nil {
		return "", fmt.Errorf("read json-ld: %w", err)
	}
	return Serialize(g, reg, FormatTurtle)
}
