package trace

import (
	"reflect"
	"testing"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

func comps(ids ...string) []schematic.Component {
	out := make([]schematic.Component, len(ids))
	for i, id := range ids {
		out[i] = schematic.Component{ID: id, Type: schematic.RoleLoad}
	}
	return out
}

func chain() schematic.Graph {
	return schematic.Graph{
		Components: comps("A", "B", "C", "D"),
		Connections: []schematic.Connection{
			{ID: "ab", FromID: "A", ToID: "B"},
			{ID: "bc", FromID: "B", ToID: "C"},
		},
	}
}

func TestReachable(t *testing.T) {
	g := chain()
	tests := []struct {
		name     string
		selected string
		want     []string
	}{
		{"from head", "A", []string{"A", "B", "C"}},
		{"from tail against direction", "C", []string{"A", "B", "C"}},
		{"isolated", "D", []string{"D"}},
		{"absent id", "Z", []string{"Z"}},
		{"no selection", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reachable(g, tt.selected).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReachableIgnoresEdgeDirection(t *testing.T) {
	forward := chain()
	reversed := chain()
	reversed.Connections[0] = schematic.Connection{ID: "ab", FromID: "B", ToID: "A"}

	for _, start := range []string{"A", "B"} {
		a := Reachable(forward, start).Sorted()
		b := Reachable(reversed, start).Sorted()
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("start %s: forward %v, reversed %v", start, a, b)
		}
	}
}

func TestReachableTerminatesOnCycles(t *testing.T) {
	g := schematic.Graph{
		Components: comps("A", "B", "C"),
		Connections: []schematic.Connection{
			{ID: "1", FromID: "A", ToID: "B"},
			{ID: "2", FromID: "B", ToID: "C"},
			{ID: "3", FromID: "C", ToID: "A"},
			{ID: "4", FromID: "A", ToID: "A"},
			{ID: "5", FromID: "A", ToID: "B"},
		},
	}
	if got := Reachable(g, "B").Len(); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestReachableSkipsDanglingWires(t *testing.T) {
	g := schematic.Graph{
		Components: comps("A", "B"),
		Connections: []schematic.Connection{
			{ID: "1", FromID: "A", ToID: "ghost"},
			{ID: "2", FromID: "ghost", ToID: "B"},
		},
	}
	got := Reachable(g, "A").Sorted()
	if !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected [A], got %v", got)
	}
}

func TestConnections(t *testing.T) {
	g := chain()
	g.Connections = append(g.Connections, schematic.Connection{ID: "cd", FromID: "C", ToID: "X"})

	got := Connections(g, Reachable(g, "B"))
	if !reflect.DeepEqual(got, []string{"ab", "bc"}) {
		t.Fatalf("expected [ab bc], got %v", got)
	}
	if got := Connections(g, Set{}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestPath(t *testing.T) {
	g := chain()
	if got := Path(g, "C", "A"); !reflect.DeepEqual(got, []string{"C", "B", "A"}) {
		t.Fatalf("expected [C B A], got %v", got)
	}
	if got := Path(g, "A", "A"); !reflect.DeepEqual(got, []string{"A"}) {
		t.Fatalf("expected [A], got %v", got)
	}
	if got := Path(g, "A", "D"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := Path(g, "A", "Z"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
