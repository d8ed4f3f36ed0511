package canvas

import (
	"math"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// Point is a canvas-local coordinate.
type Point = schematic.Position

// Component geometry, relative to the component's position.
const (
	BodyMin          = -5.0 // body hit box spans BodyMin..BodyMax on both axes
	BodyMax          = 80.0
	PortY            = 30.0
	InputPortX       = 0.0
	OutputPortX      = 75.0
	PortHitRadius    = 6.0
	WireHitHalfWidth = 5.0  // half of the invisible 10px hit stroke
	AffordanceRadius = 10.0 // trash button at the wire midpoint
)

// Rect is an axis-aligned box.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// anchor is where a component is drawn; unplaced components sit at the origin.
func anchor(c schematic.Component) Point {
	if c.Position == nil {
		return Point{}
	}
	return *c.Position
}

func offset(p Point, dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// BodyAt returns the body hit box of a component anchored at p.
func BodyAt(p Point) Rect {
	return Rect{Min: offset(p, BodyMin, BodyMin), Max: offset(p, BodyMax, BodyMax)}
}

// OutputPortAt returns the output (right) port of a component anchored at p.
func OutputPortAt(p Point) Point { return offset(p, OutputPortX, PortY) }

// InputPortAt returns the input (left) port of a component anchored at p.
func InputPortAt(p Point) Point { return offset(p, InputPortX, PortY) }

func dist(a, b Point) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// distToSegment is the distance from p to the segment a-b.
func distToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return dist(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// Segment is the drawn geometry of one wire.
type Segment struct {
	From Point
	To   Point
}

// Midpoint returns the center of the segment.
func (s Segment) Midpoint() Point {
	return Point{X: (s.From.X + s.To.X) / 2, Y: (s.From.Y + s.To.Y) / 2}
}

// layout resolves anchors for every component, applying an optional
// in-flight drag preview.
type layout struct {
	order   []schematic.Component
	anchors map[string]Point
}

func newLayout(g schematic.Graph, previewID string, preview Point) layout {
	l := layout{order: g.Components, anchors: make(map[string]Point, len(g.Components))}
	for _, c := range g.Components {
		p := anchor(c)
		if c.ID == previewID {
			p = preview
		}
		l.anchors[c.ID] = p
	}
	return l
}

// segment returns the wire geometry, or false when an endpoint component
// does not exist.
func (l layout) segment(conn schematic.Connection) (Segment, bool) {
	from, okFrom := l.anchors[conn.FromID]
	to, okTo := l.anchors[conn.ToID]
	if !okFrom || !okTo {
		return Segment{}, false
	}
	return Segment{From: OutputPortAt(from), To: InputPortAt(to)}, true
}

// HitKind names what lies under the pointer.
type HitKind int

const (
	HitNone HitKind = iota
	HitOutputPort
	HitBody
	HitAffordance
	HitWire
)

// Hit is the result of a hit test.
type Hit struct {
	Kind         HitKind
	ComponentID  string
	ConnectionID string
}

// componentAt returns the topmost component whose body contains p. Later
// components are drawn over earlier ones.
func (l layout) componentAt(p Point) (string, bool) {
	for i := len(l.order) - 1; i >= 0; i-- {
		id := l.order[i].ID
		if BodyAt(l.anchors[id]).Contains(p) {
			return id, true
		}
	}
	return "", false
}

// hitTest resolves p against, in priority order: component output ports and
// bodies (topmost first), wire delete affordances, wire strokes.
func (l layout) hitTest(g schematic.Graph, p Point) Hit {
	for i := len(l.order) - 1; i >= 0; i-- {
		id := l.order[i].ID
		a := l.anchors[id]
		if dist(p, OutputPortAt(a)) <= PortHitRadius {
			return Hit{Kind: HitOutputPort, ComponentID: id}
		}
		if BodyAt(a).Contains(p) {
			return Hit{Kind: HitBody, ComponentID: id}
		}
	}
	for i := len(g.Connections) - 1; i >= 0; i-- {
		conn := g.Connections[i]
		if seg, ok := l.segment(conn); ok && dist(p, seg.Midpoint()) <= AffordanceRadius {
			return Hit{Kind: HitAffordance, ConnectionID: conn.ID}
		}
	}
	for i := len(g.Connections) - 1; i >= 0; i-- {
		conn := g.Connections[i]
		if seg, ok := l.segment(conn); ok && distToSegment(p, seg.From, seg.To) <= WireHitHalfWidth {
			return Hit{Kind: HitWire, ConnectionID: conn.ID}
		}
	}
	return Hit{Kind: HitNone}
}

// HitTest resolves a canvas-local point against g with no drag preview.
func HitTest(g schematic.Graph, p Point) Hit {
	return newLayout(g, "", Point{}).hitTest(g, p)
}
