package port

import "context"

// Instrumentation records application-level metrics, labelled by lookup or
// MCP tool name.
type Instrumentation interface {
	RecordQueryDuration(ctx context.Context, lookup string, ms float64)
	IncrementQueryCount(ctx context.Context, lookup string)
	IncrementQueryErrors(ctx context.Context, lookup string)
	RecordToolDuration(ctx context.Context, tool string, ms float64)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) RecordQueryDuration(context.Context, string, float64) {}
func (NoopInstrumentation) IncrementQueryCount(context.Context, string)          {}
func (NoopInstrumentation) IncrementQueryErrors(context.Context, string)         {}
func (NoopInstrumentation) RecordToolDuration(context.Context, string, float64)  {}
