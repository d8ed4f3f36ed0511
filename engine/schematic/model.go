// Package schematic holds the in-memory circuit graph edited on the canvas:
// components, directed connections, and the pure mutators that derive a new
// graph from an old one.
package schematic

import "strings"

// Role is the coarse electrical function of a component. It drives
// diagnostics only, never rendering.
type Role string

const (
	RoleSource     Role = "SOURCE"
	RoleProtection Role = "PROTECTION"
	RoleControl    Role = "CONTROL"
	RoleLoad       Role = "LOAD"
	RoleGround     Role = "GROUND"
	RoleConnector  Role = "CONNECTOR"
)

// Roles lists every valid role in declaration order.
var Roles = []Role{RoleSource, RoleProtection, RoleControl, RoleLoad, RoleGround, RoleConnector}

// ParseRole normalizes s (case-insensitive, surrounding space ignored) to a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Position is a point on the unbounded canvas plane.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Component is a node in the schematic.
type Component struct {
	ID          string    `json:"id"`
	Type        Role      `json:"type"`
	SubType     string    `json:"subType"` // concrete part, e.g. "Battery"; selects the glyph
	Label       string    `json:"label"`
	Value       string    `json:"value,omitempty"` // rating such as "12V"; empty means unspecified
	Description string    `json:"description"`
	Position    *Position `json:"position,omitempty"` // nil until first laid out
}

// Connection is a directed wire between two components, referenced by id.
// Endpoints may dangle; the model does not enforce referential integrity.
type Connection struct {
	ID     string `json:"id"`
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

// Graph is one schematic. Component order is meaningful for default layout.
// A Graph value is treated as immutable: mutators return a fresh copy.
type Graph struct {
	Components  []Component  `json:"components"`
	Connections []Connection `json:"connections"`
}

// Empty returns a graph with no components and no connections.
func Empty() Graph {
	return Graph{Components: []Component{}, Connections: []Connection{}}
}

// IsEmpty reports whether the graph has no components.
func (g Graph) IsEmpty() bool { return len(g.Components) == 0 }

// Component returns a copy of the component with the given id.
func (g Graph) Component(id string) (Component, bool) {
	for _, c := range g.Components {
		if c.ID == id {
			return c.clone(), true
		}
	}
	return Component{}, false
}

// HasComponent reports whether a component with id exists.
func (g Graph) HasComponent(id string) bool {
	_, ok := g.Component(id)
	return ok
}

// Connection returns the connection with the given id.
func (g Graph) Connection(id string) (Connection, bool) {
	for _, c := range g.Connections {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

// HasRole reports whether at least one component has role r.
func (g Graph) HasRole(r Role) bool {
	for _, c := range g.Components {
		if c.Type == r {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of g. Nil slices become empty slices so the JSON
// form is always `[]`.
func (g Graph) Clone() Graph {
	out := Graph{
		Components:  make([]Component, len(g.Components)),
		Connections: make([]Connection, len(g.Connections)),
	}
	for i, c := range g.Components {
		out.Components[i] = c.clone()
	}
	copy(out.Connections, g.Connections)
	return out
}

func (c Component) clone() Component {
	if c.Position != nil {
		p := *c.Position
		c.Position = &p
	}
	return c
}
