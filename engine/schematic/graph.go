package schematic

import "github.com/google/uuid"

// NewConnectionID generates connection ids. Tests may replace it.
var NewConnectionID = func() string {
	return "conn-" + uuid.NewString()
}

// UpsertComponent replaces the component whose id matches updated.ID. It
// never inserts: an unknown id returns g unchanged.
func UpsertComponent(g Graph, updated Component) Graph {
	idx := indexOfComponent(g, updated.ID)
	if idx < 0 {
		return g
	}
	out := g.Clone()
	out.Components[idx] = updated.clone()
	return out
}

// MoveComponent sets the position of component id. There is no bounds
// checking. An unknown id returns g unchanged.
func MoveComponent(g Graph, id string, pos Position) Graph {
	idx := indexOfComponent(g, id)
	if idx < 0 {
		return g
	}
	out := g.Clone()
	p := pos
	out.Components[idx].Position = &p
	return out
}

// AddConnection appends a wire from fromID to toID under a fresh id.
// Self-loops and parallel wires between the same pair are allowed.
func AddConnection(g Graph, fromID, toID string) (Graph, Connection) {
	conn := Connection{ID: freshConnectionID(g), FromID: fromID, ToID: toID}
	out := g.Clone()
	out.Connections = append(out.Connections, conn)
	return out, conn
}

// RewireConnection moves whichever endpoints are non-empty, keeping the id
// and the other endpoint. An unknown connID returns g unchanged.
func RewireConnection(g Graph, connID, newFromID, newToID string) Graph {
	idx := indexOfConnection(g, connID)
	if idx < 0 {
		return g
	}
	out := g.Clone()
	if newFromID != "" {
		out.Connections[idx].FromID = newFromID
	}
	if newToID != "" {
		out.Connections[idx].ToID = newToID
	}
	return out
}

// DeleteConnection removes the connection with connID. An unknown id returns
// g unchanged.
func DeleteConnection(g Graph, connID string) Graph {
	idx := indexOfConnection(g, connID)
	if idx < 0 {
		return g
	}
	out := g.Clone()
	out.Connections = append(out.Connections[:idx], out.Connections[idx+1:]...)
	return out
}

func indexOfComponent(g Graph, id string) int {
	for i, c := range g.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func indexOfConnection(g Graph, id string) int {
	for i, c := range g.Connections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// freshConnectionID draws ids until one is unused in g.
func freshConnectionID(g Graph) string {
	for {
		id := NewConnectionID()
		if indexOfConnection(g, id) < 0 {
			return id
		}
	}
}
