package schematic

import (
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads a JSON graph, normalizes roles and validates ids.
func Decode(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, fmt.Errorf("schematic: decode: %w", err)
	}
	g = Normalize(g)
	if err := Validate(g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// Encode writes g as indented JSON.
func Encode(w io.Writer, g Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g.Clone())
}
