package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/guillermoBallester/flightdata/internal/core/port"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// observeToolCalls wraps every tool handler in a server span, a duration
// metric and one log line. The handler runs under the span's context, so
// the lookup span it starts is a child of the tool call.
func observeToolCalls(logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := req.Params.Name
			ctx, span := tracer.Start(ctx, "tools/call "+tool,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("rpc.method", string(mcp.MethodToolsCall)),
					attribute.String("mcp.tool", tool),
				),
			)
			defer span.End()

			start := time.Now()
			result, err := next(ctx, req)
			elapsed := time.Since(start)

			inst.RecordToolDuration(ctx, tool, float64(elapsed.Milliseconds()))

			level := slog.LevelInfo
			attrs := []slog.Attr{
				slog.String("rpc.method", string(mcp.MethodToolsCall)),
				slog.String("mcp.tool", tool),
				slog.Any("mcp.arguments", req.GetArguments()),
				slog.Duration("duration", elapsed),
			}
			switch {
			case err != nil:
				level = slog.LevelError
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				attrs = append(attrs, slog.Bool("error", true), slog.String("error.message", err.Error()))
			case result != nil && result.IsError:
				level = slog.LevelError
				span.SetStatus(codes.Error, "tool returned error")
				attrs = append(attrs, slog.Bool("error", true))
			default:
				attrs = append(attrs, slog.Bool("error", false))
			}
			logger.LogAttrs(ctx, level, "tool call", attrs...)

			return result, err
		}
	}
}

// rejectedCallHooks logs tools/call requests that fail outside a handler,
// such as an unknown tool name or unparsable params.
func rejectedCallHooks(logger *slog.Logger) *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddOnError(func(ctx context.Context, _ any, method mcp.MCPMethod, message any, err error) {
		if method != mcp.MethodToolsCall {
			return
		}
		attrs := []slog.Attr{
			slog.String("rpc.method", string(method)),
			slog.String("error.message", err.Error()),
		}
		if req, ok := message.(*mcp.CallToolRequest); ok && req.Params.Name != "" {
			attrs = append(attrs, slog.String("mcp.tool", req.Params.Name))
		}
		logger.LogAttrs(ctx, slog.LevelWarn, "tool call failed", attrs...)
	})
	return hooks
}
