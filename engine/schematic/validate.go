package schematic

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyID     = errors.New("schematic: empty id")
	ErrDuplicateID = errors.New("schematic: duplicate id")
	ErrUnknownRole = errors.New("schematic: unknown component role")
)

// Validate checks the identity invariants of a graph received from outside:
// every component and connection has a non-empty id unique within its kind,
// and every component has a known role. Dangling connection endpoints are
// not an error.
func Validate(g Graph) error {
	seen := make(map[string]struct{}, len(g.Components))
	for i, c := range g.Components {
		if c.ID == "" {
			return fmt.Errorf("component %d: %w", i, ErrEmptyID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("component %q: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = struct{}{}
		if _, ok := ParseRole(string(c.Type)); !ok {
			return fmt.Errorf("component %q role %q: %w", c.ID, c.Type, ErrUnknownRole)
		}
	}

	seen = make(map[string]struct{}, len(g.Connections))
	for i, c := range g.Connections {
		if c.ID == "" {
			return fmt.Errorf("connection %d: %w", i, ErrEmptyID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("connection %q: %w", c.ID, ErrDuplicateID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// Normalize upper-cases roles and replaces nil slices with empty ones.
func Normalize(g Graph) Graph {
	out := g.Clone()
	for i := range out.Components {
		if r, ok := ParseRole(string(out.Components[i].Type)); ok {
			out.Components[i].Type = r
		}
	}
	return out
}
