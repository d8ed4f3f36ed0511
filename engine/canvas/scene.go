package canvas

import (
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/symbols"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/trace"
)

// ComponentView is everything a renderer needs to draw one component.
type ComponentView struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Value       string        `json:"value,omitempty"`
	SubType     string        `json:"subType"`
	Glyph       symbols.Glyph `json:"glyph"`
	Position    Point         `json:"position"`
	Box         Rect          `json:"box"`
	InputPort   Point         `json:"inputPort"`
	OutputPort  Point         `json:"outputPort"`
	Selected    bool          `json:"selected"`
	Highlighted bool          `json:"highlighted"`
	Editing     bool          `json:"editing"`
}

// WireView is one drawable connection. Affordance is set only while the
// wire is hovered.
type WireView struct {
	ID          string `json:"id"`
	From        Point  `json:"from"`
	To          Point  `json:"to"`
	Highlighted bool   `json:"highlighted"`
	Hovered     bool   `json:"hovered"`
	Affordance  *Point `json:"affordance,omitempty"`
}

// Line is the rubber-band preview of a connection being drawn.
type Line struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// EditorView is the inline editor overlay.
type EditorView struct {
	ComponentID string `json:"componentId"`
	Draft       Draft  `json:"draft"`
}

// Callout is the detail card for the selected component.
type Callout struct {
	ComponentID string `json:"componentId"`
	Label       string `json:"label"`
	SubType     string `json:"subType"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description"`
}

// Scene is a render projection of a graph under the controller's state.
type Scene struct {
	Mode       string          `json:"mode"`
	Standard   string          `json:"standard"`
	Empty      bool            `json:"empty"`
	Components []ComponentView `json:"components"`
	Wires      []WireView      `json:"wires"`
	RubberBand *Line           `json:"rubberBand,omitempty"`
	Editor     *EditorView     `json:"editor,omitempty"`
	Callout    *Callout        `json:"callout,omitempty"`
}

// BuildScene projects g for drawing. Dragged components appear at their
// live preview position; wires with a missing endpoint are omitted.
func BuildScene(g schematic.Graph, c *Controller, style symbols.ResistorStyle) Scene {
	previewID, preview, _ := c.DragPreview()
	l := newLayout(g, previewID, preview)
	reach := trace.Reachable(g, c.Selected())
	editID, draft, editing := c.Editor()

	s := Scene{
		Mode:       c.Mode().String(),
		Standard:   style.Standard(),
		Empty:      g.IsEmpty(),
		Components: make([]ComponentView, 0, len(g.Components)),
		Wires:      make([]WireView, 0, len(g.Connections)),
	}
	for _, comp := range g.Components {
		at := l.anchors[comp.ID]
		s.Components = append(s.Components, ComponentView{
			ID:          comp.ID,
			Label:       comp.Label,
			Value:       comp.Value,
			SubType:     comp.SubType,
			Glyph:       symbols.For(comp.SubType, style),
			Position:    at,
			Box:         BodyAt(at),
			InputPort:   InputPortAt(at),
			OutputPort:  OutputPortAt(at),
			Selected:    comp.ID == c.Selected(),
			Highlighted: reach.Has(comp.ID),
			Editing:     editing && comp.ID == editID,
		})
	}
	for _, conn := range g.Connections {
		seg, ok := l.segment(conn)
		if !ok {
			continue
		}
		w := WireView{
			ID:          conn.ID,
			From:        seg.From,
			To:          seg.To,
			Highlighted: reach.Has(conn.FromID) && reach.Has(conn.ToID),
			Hovered:     conn.ID == c.HoveredWire(),
		}
		if w.Hovered {
			mid := seg.Midpoint()
			w.Affordance = &mid
		}
		s.Wires = append(s.Wires, w)
	}
	if from, cursor, ok := c.RubberBand(); ok {
		if at, present := l.anchors[from]; present {
			s.RubberBand = &Line{From: OutputPortAt(at), To: cursor}
		}
	}
	if editing {
		s.Editor = &EditorView{ComponentID: editID, Draft: draft}
	}
	if comp, ok := g.Component(c.Selected()); ok {
		s.Callout = &Callout{
			ComponentID: comp.ID,
			Label:       comp.Label,
			SubType:     comp.SubType,
			Value:       comp.Value,
			Description: comp.Description,
		}
	}
	return s
}
