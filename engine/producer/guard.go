package producer

import (
	"context"
	"log/slog"
	"time"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/fn"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/resilience"
)

// GuardOpts configures Guard.
type GuardOpts struct {
	Limiter resilience.LimiterOpts
	Breaker resilience.BreakerOpts
	Retry   fn.RetryOpts
	// Timeout bounds each attempt. Zero means no bound.
	Timeout time.Duration
}

// DefaultGuardOpts allows one generation per second with a burst of three.
var DefaultGuardOpts = GuardOpts{
	Limiter: resilience.LimiterOpts{Rate: 1, Burst: 3},
	Breaker: resilience.DefaultBreakerOpts,
	Retry:   fn.DefaultRetry,
	Timeout: 60 * time.Second,
}

// Guarded is a Producer behind a rate limiter, circuit breaker, retry and
// per-attempt timeout. Only transient failures are retried or trip the
// breaker.
type Guarded struct {
	stage   fn.Stage[string, schematic.Graph]
	breaker *resilience.Breaker
}

// Guard wraps p.
func Guard(p Producer, opts GuardOpts, logger *slog.Logger) *Guarded {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Retry.Retryable = IsTransient
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}
	opts.Breaker.Counts = IsTransient
	notify := opts.Breaker.OnStateChange
	opts.Breaker.OnStateChange = func(from, to resilience.State) {
		logger.Warn("producer breaker state changed", "from", from.String(), "to", to.String())
		if notify != nil {
			notify(from, to)
		}
	}
	breaker := resilience.NewBreaker(opts.Breaker)
	limiter := resilience.NewLimiter(opts.Limiter)

	call := fn.Stage[string, schematic.Graph](func(ctx context.Context, description string) fn.Result[schematic.Graph] {
		g, err := p.Generate(ctx, description)
		return fn.FromPair(g, err)
	})
	stage := fn.Chain[string, schematic.Graph](
		fn.TracedStage("producer.attempt", call),
		func(s fn.Stage[string, schematic.Graph]) fn.Stage[string, schematic.Graph] {
			return fn.TracedStage("producer.generate", s)
		},
		func(s fn.Stage[string, schematic.Graph]) fn.Stage[string, schematic.Graph] {
			return resilience.LimiterStage(limiter, s)
		},
		func(s fn.Stage[string, schematic.Graph]) fn.Stage[string, schematic.Graph] {
			return resilience.BreakerStage(breaker, s)
		},
		func(s fn.Stage[string, schematic.Graph]) fn.Stage[string, schematic.Graph] {
			return fn.RetryStage(opts.Retry, s)
		},
		func(s fn.Stage[string, schematic.Graph]) fn.Stage[string, schematic.Graph] {
			return fn.TimeoutStage(opts.Timeout, s)
		},
	)
	return &Guarded{stage: stage, breaker: breaker}
}

// Generate rejects blank descriptions, then runs the guarded pipeline.
// Every failure is a *GenerationError.
func (g *Guarded) Generate(ctx context.Context, description string) (schematic.Graph, error) {
	if err := CheckDescription(description); err != nil {
		return schematic.Graph{}, asGenerationError("guard", err)
	}
	out, err := g.stage(ctx, description).Unwrap()
	if err != nil {
		return schematic.Graph{}, asGenerationError("guard", err)
	}
	return out, nil
}

// BreakerState exposes the breaker for health reporting.
func (g *Guarded) BreakerState() resilience.State { return g.breaker.State() }
