package fn

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "schematicflow/pkg/fn"

// Stage is a function that transforms In to Out within a context.
type Stage[In, Out any] func(context.Context, In) Result[Out]

// Then composes two stages, short-circuiting on error.
func Then[A, B, C any](first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	return func(ctx context.Context, a A) Result[C] {
		r := first(ctx, a)
		if r.IsErr() {
			return Err[C](r.err)
		}
		return second(ctx, r.val)
	}
}

// Wrap is a stage decorator.
type Wrap[In, Out any] func(Stage[In, Out]) Stage[In, Out]

// Chain applies wrappers so that the first one listed is the outermost.
func Chain[In, Out any](stage Stage[In, Out], wraps ...Wrap[In, Out]) Stage[In, Out] {
	for i := len(wraps) - 1; i >= 0; i-- {
		stage = wraps[i](stage)
	}
	return stage
}

// MapStage wraps a pure function as a Stage.
func MapStage[In, Out any](f func(In) Out) Stage[In, Out] {
	return func(_ context.Context, in In) Result[Out] {
		return Ok(f(in))
	}
}

// TimeoutStage bounds each call of stage by d. A zero d leaves it unbounded.
func TimeoutStage[In, Out any](d time.Duration, stage Stage[In, Out]) Stage[In, Out] {
	if d <= 0 {
		return stage
	}
	return func(ctx context.Context, in In) Result[Out] {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return stage(ctx, in)
	}
}

// TracedStage wraps a stage with OTel span creation.
func TracedStage[In, Out any](name string, stage Stage[In, Out]) Stage[In, Out] {
	return func(ctx context.Context, in In) Result[Out] {
		ctx, span := otel.Tracer(tracerName).Start(ctx, name)
		defer span.End()
		result := stage(ctx, in)
		if result.IsErr() {
			span.RecordError(result.err)
			span.SetStatus(codes.Error, result.err.Error())
		}
		return result
	}
}
