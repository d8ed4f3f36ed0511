package main

import (
	"time"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/canvas"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/session"
	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/metrics"
)

var met = metrics.New()

var (
	mMutations = func(kind string) *metrics.Counter {
		return met.Counter("schematic_mutations_total", "Committed graph mutations.", "kind", kind)
	}
	mGenerations = func(outcome string) *metrics.Counter {
		return met.Counter("schematic_generations_total", "Generation requests by outcome.", "outcome", outcome)
	}
	mGenerateDur = met.Histogram("schematic_generation_duration_seconds", "Producer latency.", metrics.LatencyBuckets)
	mSessions    = met.Gauge("schematic_sessions", "Live editing sessions.")
)

func hooks() session.Hooks {
	return session.Hooks{
		OnMutation: func(kind canvas.Mutation) { mMutations(string(kind)).Inc() },
		OnGeneration: func(outcome string, elapsed time.Duration) {
			mGenerations(outcome).Inc()
			mGenerateDur.ObserveDuration(elapsed)
		},
	}
}
