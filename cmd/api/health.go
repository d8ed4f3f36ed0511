package main

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/pkg/resilience"
)

// producerService is the health service name tracking the producer breaker.
const producerService = "schematic.Producer"

// healthReporter serves grpc.health.v1. The overall status is always
// SERVING; the producer service goes NOT_SERVING while its breaker is open.
type healthReporter struct {
	srv *health.Server
}

func newHealth() *healthReporter {
	h := &healthReporter{srv: health.NewServer()}
	h.srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.srv.SetServingStatus(producerService, healthpb.HealthCheckResponse_SERVING)
	return h
}

func (h *healthReporter) register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

func (h *healthReporter) setProducer(st resilience.State) {
	status := healthpb.HealthCheckResponse_SERVING
	if st == resilience.StateOpen {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.srv.SetServingStatus(producerService, status)
}

func (h *healthReporter) shutdown() { h.srv.Shutdown() }
