package mcp

import (
	"log/slog"

	"github.com/guillermoBallester/flightdata/internal/core/port"
	"github.com/guillermoBallester/flightdata/internal/core/service"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NewServer creates an MCPServer exposing the flight lookups. Every tool
// call is traced, timed and logged; tracer and inst may be nil.
func NewServer(version string, flights *service.FlightService, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}

	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		// Outermost, so recovered panics reach it as errors.
		server.WithToolHandlerMiddleware(observeToolCalls(logger, tracer, inst)),
		server.WithRecovery(),
		server.WithHooks(rejectedCallHooks(logger)),
	)

	RegisterTools(s, flights, logger)

	return s
}
