package session

import (
	"context"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/diagnostics"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// Kind classifies a change event.
type Kind string

const (
	KindMutation  Kind = "mutation"
	KindGenerated Kind = "generated"
	KindLoaded    Kind = "loaded"
	KindSelection Kind = "selection"
	KindStyle     Kind = "style"
	KindNotice    Kind = "notice"
	KindClosed    Kind = "closed"
)

// Event is published after every committed change.
type Event struct {
	Session     string                 `json:"session"`
	Kind        Kind                   `json:"kind"`
	Version     uint64                 `json:"version"`
	Selected    string                 `json:"selected,omitempty"`
	Notice      string                 `json:"notice,omitempty"`
	Components  []schematic.Component  `json:"components"`
	Connections []schematic.Connection `json:"connections"`
	Findings    []diagnostics.Finding  `json:"findings"`
}

// Publisher delivers change events to observers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev Event) error

func (f PublisherFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }

func (s *Session) eventLocked(kind Kind) Event {
	g := s.graph.Clone()
	return Event{
		Session:     s.id,
		Kind:        kind,
		Version:     s.version,
		Selected:    s.ctrl.Selected(),
		Notice:      s.notice,
		Components:  g.Components,
		Connections: g.Connections,
		Findings:    diagnostics.Run(g),
	}
}

// publishLocked sends an event; failures are logged and never surfaced.
func (s *Session) publishLocked(ctx context.Context, kind Kind) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, s.eventLocked(kind)); err != nil {
		s.logger.Warn("publish change event", "kind", kind, "err", err)
	}
}

// Close publishes a final closed event.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(ctx, KindClosed)
}
