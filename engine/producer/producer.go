// Package producer turns a natural-language circuit description into a
// schematic graph. Concrete producers call a language model (Ollama,
// OpenAI) or read a declarative HCL file; Guarded wraps any of them with
// rate limiting, a circuit breaker, retry and tracing.
package producer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// Producer generates a graph from a description. Implementations return
// a *GenerationError on failure.
type Producer interface {
	Generate(ctx context.Context, description string) (schematic.Graph, error)
}

// Func adapts a function to Producer.
type Func func(ctx context.Context, description string) (schematic.Graph, error)

func (f Func) Generate(ctx context.Context, description string) (schematic.Graph, error) {
	return f(ctx, description)
}

var (
	ErrEmptyDescription = errors.New("producer: empty description")
	ErrMalformed        = errors.New("producer: malformed response")
)

// GenerationError reports a failed generation. Transient marks failures
// worth retrying: transport errors, timeouts and server-side statuses.
type GenerationError struct {
	Op        string
	Err       error
	Transient bool
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("producer: %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func transient(op string, err error) error {
	return &GenerationError{Op: op, Err: err, Transient: true}
}

func permanent(op string, err error) error {
	return &GenerationError{Op: op, Err: err}
}

// asGenerationError keeps errors raised around a producer call (limiter,
// breaker, cancelled retries) inside the GenerationError contract. Only a
// blank description is permanent.
func asGenerationError(op string, err error) error {
	var ge *GenerationError
	if err == nil || errors.As(err, &ge) {
		return err
	}
	if errors.Is(err, ErrEmptyDescription) {
		return permanent(op, err)
	}
	return transient(op, err)
}

// IsTransient reports whether err is a GenerationError marked transient, or
// a context deadline.
func IsTransient(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// CheckDescription rejects blank descriptions before any call is made.
func CheckDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	return nil
}
