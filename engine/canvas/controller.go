package canvas

import (
	"errors"
	"fmt"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// ErrUnknownEvent is returned by Handle for an event kind it does not know.
var ErrUnknownEvent = errors.New("canvas: unknown event kind")

// Mode is the gesture state. Modes are mutually exclusive.
type Mode int

const (
	Idle Mode = iota
	DraggingComponent
	DraggingConnection
	Editing
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case DraggingComponent:
		return "dragging_component"
	case DraggingConnection:
		return "dragging_connection"
	case Editing:
		return "editing"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// EventKind enumerates pointer events and editor commands.
type EventKind string

const (
	Press       EventKind = "press"
	Move        EventKind = "move"
	Release     EventKind = "release"
	Leave       EventKind = "leave"
	DoubleClick EventKind = "double_click"
	Hover       EventKind = "hover"

	EditDraft   EventKind = "edit_draft"
	EditConfirm EventKind = "edit_confirm"
	EditCancel  EventKind = "edit_cancel"
	SetOrigin   EventKind = "set_origin"
	Select      EventKind = "select"
)

// Event is one input to the controller. Pointer events carry screen
// coordinates in X/Y; set_origin carries the container's screen origin.
type Event struct {
	Kind        EventKind `json:"kind"`
	X           float64   `json:"x"`
	Y           float64   `json:"y"`
	ComponentID string    `json:"componentId,omitempty"` // select; empty clears
	Draft       *Draft    `json:"draft,omitempty"`       // edit_draft
}

// Draft is the inline editor's working copy.
type Draft struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// Mutation names the graph operation an event committed.
type Mutation string

const (
	NoMutation        Mutation = ""
	MovedComponent    Mutation = "move_component"
	AddedConnection   Mutation = "add_connection"
	DeletedConnection Mutation = "delete_connection"
	UpdatedComponent  Mutation = "upsert_component"
)

// Outcome reports what an event did.
type Outcome struct {
	Mutation         Mutation
	ComponentID      string
	ConnectionID     string
	SelectionChanged bool
}

// Changed reports whether the outcome carries a graph mutation.
func (o Outcome) Changed() bool { return o.Mutation != NoMutation }

// Controller translates pointer events into graph mutations. It holds only
// gesture state; the graph is passed in and returned by every call.
type Controller struct {
	origin Point
	mode   Mode

	dragID    string
	grab      Point
	dragStart Point
	dragPos   Point

	wireFrom string
	cursor   Point

	editID string
	draft  Draft

	selected string
	hovered  string
}

// New returns an idle controller with no selection.
func New() *Controller { return &Controller{} }

func (c *Controller) Mode() Mode          { return c.mode }
func (c *Controller) Origin() Point       { return c.origin }
func (c *Controller) Selected() string    { return c.selected }
func (c *Controller) HoveredWire() string { return c.hovered }

// SetOrigin records the canvas container's screen origin.
func (c *Controller) SetOrigin(p Point) { c.origin = p }

// SelectComponent sets the selection; an empty id clears it. It reports
// whether the selection changed.
func (c *Controller) SelectComponent(id string) bool {
	if c.selected == id {
		return false
	}
	c.selected = id
	return true
}

// Reset drops every gesture, the selection and hover state. Used when the
// graph is replaced wholesale.
func (c *Controller) Reset() {
	origin := c.origin
	*c = Controller{origin: origin}
}

// DragPreview returns the live position of the component being dragged.
func (c *Controller) DragPreview() (string, Point, bool) {
	if c.mode != DraggingComponent {
		return "", Point{}, false
	}
	return c.dragID, c.dragPos, true
}

// RubberBand returns the source component and current cursor of an
// in-progress connection drag.
func (c *Controller) RubberBand() (string, Point, bool) {
	if c.mode != DraggingConnection {
		return "", Point{}, false
	}
	return c.wireFrom, c.cursor, true
}

// Editor returns the component under edit and its draft.
func (c *Controller) Editor() (string, Draft, bool) {
	if c.mode != Editing {
		return "", Draft{}, false
	}
	return c.editID, c.draft, true
}

func (c *Controller) toLocal(ev Event) Point {
	return Point{X: ev.X - c.origin.X, Y: ev.Y - c.origin.Y}
}

// Handle applies one event to g and returns the resulting graph, which is g
// itself when nothing was committed.
func (c *Controller) Handle(g schematic.Graph, ev Event) (schematic.Graph, Outcome, error) {
	switch ev.Kind {
	case Press:
		g, out := c.press(g, c.toLocal(ev))
		return g, out, nil
	case Move, Hover:
		c.move(g, c.toLocal(ev))
		return g, Outcome{}, nil
	case Release:
		g, out := c.release(g, c.toLocal(ev), true)
		return g, out, nil
	case Leave:
		g, out := c.release(g, c.toLocal(ev), false)
		return g, out, nil
	case DoubleClick:
		c.doubleClick(g, c.toLocal(ev))
		return g, Outcome{}, nil
	case EditDraft:
		if ev.Draft != nil {
			c.UpdateDraft(*ev.Draft)
		}
		return g, Outcome{}, nil
	case EditConfirm:
		g, out := c.Confirm(g)
		return g, out, nil
	case EditCancel:
		c.Cancel()
		return g, Outcome{}, nil
	case SetOrigin:
		c.SetOrigin(Point{X: ev.X, Y: ev.Y})
		return g, Outcome{}, nil
	case Select:
		return g, Outcome{SelectionChanged: c.SelectComponent(ev.ComponentID)}, nil
	}
	return g, Outcome{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Kind)
}

func (c *Controller) press(g schematic.Graph, p Point) (schematic.Graph, Outcome) {
	if c.mode != Idle {
		return g, Outcome{}
	}
	hit := HitTest(g, p)
	switch hit.Kind {
	case HitOutputPort:
		c.mode = DraggingConnection
		c.wireFrom = hit.ComponentID
		c.cursor = p
		return g, Outcome{}
	case HitBody:
		comp, _ := g.Component(hit.ComponentID)
		start := anchor(comp)
		c.mode = DraggingComponent
		c.dragID = hit.ComponentID
		c.grab = Point{X: p.X - start.X, Y: p.Y - start.Y}
		c.dragStart = start
		c.dragPos = start
		return g, Outcome{ComponentID: hit.ComponentID, SelectionChanged: c.SelectComponent(hit.ComponentID)}
	case HitAffordance, HitWire:
		if c.hovered == hit.ConnectionID {
			c.hovered = ""
		}
		return schematic.DeleteConnection(g, hit.ConnectionID), Outcome{Mutation: DeletedConnection, ConnectionID: hit.ConnectionID}
	}
	return g, Outcome{SelectionChanged: c.SelectComponent("")}
}

func (c *Controller) move(g schematic.Graph, p Point) {
	switch c.mode {
	case DraggingComponent:
		c.dragPos = Point{X: p.X - c.grab.X, Y: p.Y - c.grab.Y}
	case DraggingConnection:
		c.cursor = p
	case Idle:
		hit := HitTest(g, p)
		if hit.Kind == HitAffordance || hit.Kind == HitWire {
			c.hovered = hit.ConnectionID
		} else {
			c.hovered = ""
		}
	}
}

// release ends a drag. A leave ends component drags like a release but
// never completes a connection, since the pointer is outside every body.
func (c *Controller) release(g schematic.Graph, p Point, overCanvas bool) (schematic.Graph, Outcome) {
	switch c.mode {
	case DraggingComponent:
		id := c.dragID
		if overCanvas {
			c.dragPos = Point{X: p.X - c.grab.X, Y: p.Y - c.grab.Y}
		}
		final, start := c.dragPos, c.dragStart
		c.endGesture()
		if final == start {
			return g, Outcome{ComponentID: id}
		}
		return schematic.MoveComponent(g, id, final), Outcome{Mutation: MovedComponent, ComponentID: id}
	case DraggingConnection:
		from := c.wireFrom
		c.endGesture()
		if !overCanvas {
			return g, Outcome{}
		}
		to, ok := newLayout(g, "", Point{}).componentAt(p)
		if !ok {
			return g, Outcome{}
		}
		g, conn := schematic.AddConnection(g, from, to)
		return g, Outcome{Mutation: AddedConnection, ComponentID: to, ConnectionID: conn.ID}
	}
	return g, Outcome{}
}

func (c *Controller) endGesture() {
	c.mode = Idle
	c.dragID, c.wireFrom = "", ""
	c.grab, c.dragStart, c.dragPos, c.cursor = Point{}, Point{}, Point{}, Point{}
}

func (c *Controller) doubleClick(g schematic.Graph, p Point) {
	if c.mode != Idle {
		return
	}
	id, ok := newLayout(g, "", Point{}).componentAt(p)
	if !ok {
		return
	}
	comp, _ := g.Component(id)
	c.mode = Editing
	c.editID = id
	c.draft = Draft{Label: comp.Label, Value: comp.Value, Description: comp.Description}
}

// UpdateDraft replaces the draft. It reports false when not editing.
func (c *Controller) UpdateDraft(d Draft) bool {
	if c.mode != Editing {
		return false
	}
	c.draft = d
	return true
}

// Confirm commits the draft's label, value and description and returns to
// Idle. Outside Editing it does nothing.
func (c *Controller) Confirm(g schematic.Graph) (schematic.Graph, Outcome) {
	if c.mode != Editing {
		return g, Outcome{}
	}
	id, d := c.editID, c.draft
	c.Cancel()
	comp, ok := g.Component(id)
	if !ok {
		return g, Outcome{}
	}
	comp.Label, comp.Value, comp.Description = d.Label, d.Value, d.Description
	return schematic.UpsertComponent(g, comp), Outcome{Mutation: UpdatedComponent, ComponentID: id}
}

// Cancel discards the draft and returns to Idle.
func (c *Controller) Cancel() {
	if c.mode != Editing {
		return
	}
	c.mode = Idle
	c.editID = ""
	c.draft = Draft{}
}
