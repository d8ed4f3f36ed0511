// Package trace computes continuity over a schematic: which components are
// electrically reachable from a selected one. Wires are traversed in both
// directions regardless of their from/to orientation.
package trace

import (
	"sort"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// Set is a set of component ids.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the ids in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// adjacency builds an undirected neighbor list. Wires with an endpoint that
// is not a component of g are skipped.
func adjacency(g schematic.Graph) map[string][]string {
	present := make(map[string]struct{}, len(g.Components))
	for _, c := range g.Components {
		present[c.ID] = struct{}{}
	}
	adj := make(map[string][]string, len(g.Components))
	for _, conn := range g.Connections {
		_, okFrom := present[conn.FromID]
		_, okTo := present[conn.ToID]
		if !okFrom || !okTo {
			continue
		}
		adj[conn.FromID] = append(adj[conn.FromID], conn.ToID)
		adj[conn.ToID] = append(adj[conn.ToID], conn.FromID)
	}
	return adj
}

// Reachable returns every component id reachable from selected, including
// selected itself. An empty selection yields an empty set; a selection that
// is not in g yields just {selected}.
func Reachable(g schematic.Graph, selected string) Set {
	visited := Set{}
	if selected == "" {
		return visited
	}
	adj := adjacency(g)

	visited[selected] = struct{}{}
	queue := []string{selected}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if visited.Has(next) {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return visited
}

// Connections returns the ids of wires whose endpoints are both in s, in
// graph order. These are the wires drawn highlighted.
func Connections(g schematic.Graph, s Set) []string {
	var out []string
	for _, conn := range g.Connections {
		if s.Has(conn.FromID) && s.Has(conn.ToID) {
			out = append(out, conn.ID)
		}
	}
	return out
}

// Path returns the shortest undirected chain of component ids from fromID
// to toID, or nil when they are not connected.
func Path(g schematic.Graph, fromID, toID string) []string {
	if !g.HasComponent(fromID) || !g.HasComponent(toID) {
		return nil
	}
	if fromID == toID {
		return []string{fromID}
	}
	adj := adjacency(g)

	prev := map[string]string{fromID: ""}
	queue := []string{fromID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == toID {
				return unwind(prev, fromID, toID)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func unwind(prev map[string]string, fromID, toID string) []string {
	var rev []string
	for at := toID; at != fromID; at = prev[at] {
		rev = append(rev, at)
	}
	rev = append(rev, fromID)
	out := make([]string, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}
