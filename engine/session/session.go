// Package session owns the mutable state of one editing session: the
// current graph, the canvas controller, the resistor style and the
// generation sequence. Every operation is serialized by the session lock
// and commits whole-graph replacements, so readers always observe a
// complete graph.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/bom"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/canvas"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/diagnostics"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/producer"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/symbols"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/trace"
)

// FailureNotice is shown after a failed generation.
const FailureNotice = "Generation failed. Try being more descriptive."

var (
	ErrStaleGeneration = errors.New("session: generation superseded by a newer request")
	ErrNoProducer      = errors.New("session: no producer configured")
	ErrNotFound        = errors.New("session: not found")
)

// Generation outcomes reported to Hooks.
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// Hooks receive counts for metrics. Nil fields are skipped.
type Hooks struct {
	OnMutation   func(kind canvas.Mutation)
	OnGeneration func(outcome string, elapsed time.Duration)
}

// Options configures a Session.
type Options struct {
	Producer  producer.Producer
	Publisher Publisher
	Style     symbols.ResistorStyle
	Hooks     Hooks
	Logger    *slog.Logger
}

// Session is the single owner of one schematic.
type Session struct {
	id       string
	producer producer.Producer
	pub      Publisher
	hooks    Hooks
	logger   *slog.Logger

	mu      sync.Mutex
	graph   schematic.Graph
	ctrl    *canvas.Controller
	style   symbols.ResistorStyle
	version uint64
	notice  string
	issued  uint64 // sequence number of the latest generation request
	pending bool
}

// New creates an empty session.
func New(id string, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Style == "" {
		opts.Style = symbols.StyleIEEE
	}
	return &Session{
		id:       id,
		producer: opts.Producer,
		pub:      opts.Publisher,
		hooks:    opts.Hooks,
		logger:   opts.Logger.With("session", id),
		graph:    schematic.Empty(),
		ctrl:     canvas.New(),
		style:    opts.Style,
	}
}

func (s *Session) ID() string { return s.id }

// Snapshot is a consistent read of the session.
type Snapshot struct {
	ID                     string                `json:"id"`
	Version                uint64                `json:"version"`
	Graph                  schematic.Graph       `json:"graph"`
	Findings               []diagnostics.Finding `json:"findings"`
	Status                 diagnostics.Status    `json:"status,omitempty"`
	Selected               string                `json:"selected,omitempty"`
	Highlighted            []string              `json:"highlighted"`
	HighlightedConnections []string              `json:"highlightedConnections"`
	Mode                   string                `json:"mode"`
	Notice                 string                `json:"notice,omitempty"`
	Pending                bool                  `json:"pending"`
	Style                  symbols.ResistorStyle `json:"style"`
	Standard               string                `json:"standard"`
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	findings := diagnostics.Run(s.graph)
	reach := trace.Reachable(s.graph, s.ctrl.Selected())
	wires := trace.Connections(s.graph, reach)
	if wires == nil {
		wires = []string{}
	}
	return Snapshot{
		ID:                     s.id,
		Version:                s.version,
		Graph:                  s.graph.Clone(),
		Findings:               findings,
		Status:                 diagnostics.Worst(findings),
		Selected:               s.ctrl.Selected(),
		Highlighted:            reach.Sorted(),
		HighlightedConnections: wires,
		Mode:                   s.ctrl.Mode().String(),
		Notice:                 s.notice,
		Pending:                s.pending,
		Style:                  s.style,
		Standard:               s.style.Standard(),
	}
}

// Graph returns a copy of the current graph.
func (s *Session) Graph() schematic.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Scene returns the render projection of the current state.
func (s *Session) Scene() canvas.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canvas.BuildScene(s.graph, s.ctrl, s.style)
}

// WriteBOM writes the bill of materials for the current graph as CSV.
func (s *Session) WriteBOM(w io.Writer) error {
	return bom.WriteCSV(w, s.Graph())
}

// Load replaces the graph wholesale, as a successful generation does. Any
// generation still in flight is superseded and will not apply.
func (s *Session) Load(ctx context.Context, g schematic.Graph) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.pending = false
	s.replaceLocked(ctx, g, KindLoaded)
	return s.snapshotLocked()
}

func (s *Session) replaceLocked(ctx context.Context, g schematic.Graph, kind Kind) {
	s.ctrl.Reset()
	s.notice = ""
	s.commitLocked(ctx, schematic.ApplyDefaultLayout(g), kind)
}

// commitLocked installs g as the current graph and publishes the change.
func (s *Session) commitLocked(ctx context.Context, g schematic.Graph, kind Kind) {
	s.graph = g
	s.version++
	s.logger.Debug("graph committed", "kind", kind, "version", s.version,
		"components", len(g.Components), "connections", len(g.Connections))
	s.publishLocked(ctx, kind)
}

// Handle routes one canvas event through the controller and commits the
// resulting mutation, if any.
func (s *Session) Handle(ctx context.Context, ev canvas.Event) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, out, err := s.ctrl.Handle(s.graph, ev)
	if err != nil {
		return s.snapshotLocked(), err
	}
	switch {
	case out.Changed():
		s.commitLocked(ctx, g, KindMutation)
		if s.hooks.OnMutation != nil {
			s.hooks.OnMutation(out.Mutation)
		}
	case out.SelectionChanged:
		s.publishLocked(ctx, KindSelection)
	}
	return s.snapshotLocked(), nil
}

// QuickEditValue sets a component's value from the detail callout. An
// empty value or unknown component leaves the graph unchanged.
func (s *Session) QuickEditValue(ctx context.Context, componentID, value string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	comp, ok := s.graph.Component(componentID)
	if value == "" || !ok || comp.Value == value {
		return s.snapshotLocked()
	}
	comp.Value = value
	s.commitLocked(ctx, schematic.UpsertComponent(s.graph, comp), KindMutation)
	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(canvas.UpdatedComponent)
	}
	return s.snapshotLocked()
}

// RewireConnection moves one or both endpoints of a connection. Empty ids
// keep the existing endpoint; an unknown connection is a no-op.
func (s *Session) RewireConnection(ctx context.Context, connID, fromID, toID string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	conn, ok := s.graph.Connection(connID)
	if !ok || ((fromID == "" || fromID == conn.FromID) && (toID == "" || toID == conn.ToID)) {
		return s.snapshotLocked()
	}
	s.commitLocked(ctx, schematic.RewireConnection(s.graph, connID, fromID, toID), KindMutation)
	if s.hooks.OnMutation != nil {
		s.hooks.OnMutation(RewiredConnection)
	}
	return s.snapshotLocked()
}

// RewiredConnection is reported to Hooks for RewireConnection.
const RewiredConnection canvas.Mutation = "rewire_connection"

// SetStyle changes the resistor drawing style.
func (s *Session) SetStyle(ctx context.Context, style symbols.ResistorStyle) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if style != s.style {
		s.style = style
		s.publishLocked(ctx, KindStyle)
	}
	return s.snapshotLocked()
}

// Generate asks the producer for a new graph. The producer runs without
// the session lock so events keep flowing. Only the latest issued request
// may apply its result: an earlier one that completes afterwards returns
// ErrStaleGeneration and changes nothing. A failure of the latest request
// leaves the graph untouched and records FailureNotice.
func (s *Session) Generate(ctx context.Context, description string) (Snapshot, error) {
	if err := producer.CheckDescription(description); err != nil {
		return s.Snapshot(), err
	}
	if s.producer == nil {
		return s.Snapshot(), ErrNoProducer
	}

	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.pending = true
	s.mu.Unlock()

	s.logger.Info("generation started", "seq", seq)
	start := time.Now()
	g, err := s.producer.Generate(ctx, description)
	elapsed := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		s.logger.Info("generation discarded", "seq", seq, "latest", s.issued, "err", err)
		s.observe(OutcomeStale, elapsed)
		return s.snapshotLocked(), ErrStaleGeneration
	}
	s.pending = false

	if err != nil {
		s.notice = FailureNotice
		s.logger.Error("generation failed", "seq", seq, "err", err)
		s.observe(OutcomeFailed, elapsed)
		s.publishLocked(ctx, KindNotice)
		return s.snapshotLocked(), err
	}

	s.replaceLocked(ctx, g, KindGenerated)
	s.logger.Info("generation applied", "seq", seq, "elapsed", elapsed,
		"components", len(g.Components), "connections", len(g.Connections))
	s.observe(OutcomeApplied, elapsed)
	return s.snapshotLocked(), nil
}

func (s *Session) observe(outcome string, elapsed time.Duration) {
	if s.hooks.OnGeneration != nil {
		s.hooks.OnGeneration(outcome, elapsed)
	}
}
