// Package natsutil publishes and subscribes to JSON values over NATS with
// OpenTelemetry trace context carried in message headers.
package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// headerCarrier adapts nats.Msg headers to propagation.TextMapCarrier.
type headerCarrier nats.Msg

func (c *headerCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *headerCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// Publish marshals v to JSON and publishes it on subject, injecting the
// trace context of ctx.
func Publish[T any](ctx context.Context, nc *nats.Conn, subject string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("natsutil: marshal %s: %w", subject, err)
	}
	msg := &nats.Msg{Subject: subject, Data: data}
	otel.GetTextMapPropagator().Inject(ctx, (*headerCarrier)(msg))
	return nc.PublishMsg(msg)
}

// Subscribe decodes JSON messages on subject into T and calls handler with
// the extracted trace context. Messages that fail to decode are dropped.
func Subscribe[T any](nc *nats.Conn, subject string, handler func(context.Context, T)) (*nats.Subscription, error) {
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var v T
		if err := json.Unmarshal(msg.Data, &v); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*headerCarrier)(msg))
		handler(ctx, v)
	})
}

// ChangedSubject is where change events for one session are published:
// <prefix>.<session>.changed.
func ChangedSubject(prefix, session string) string {
	return prefix + "." + session + ".changed"
}

// WatchSubject matches change events for one session, or every session
// when session is empty.
func WatchSubject(prefix, session string) string {
	if session == "" {
		session = "*"
	}
	return ChangedSubject(prefix, session)
}

// Publisher publishes values of T on a subject derived from each value.
type Publisher[T any] struct {
	nc      *nats.Conn
	subject func(T) string
}

// NewPublisher creates a Publisher. subject maps a value to its subject.
func NewPublisher[T any](nc *nats.Conn, subject func(T) string) *Publisher[T] {
	return &Publisher[T]{nc: nc, subject: subject}
}

func (p *Publisher[T]) Publish(ctx context.Context, v T) error {
	return Publish(ctx, p.nc, p.subject(v), v)
}
