package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/guillermoBallester/flightdata"

const (
	lookupKey = attribute.Key("flight.lookup")
	toolKey   = attribute.Key("mcp.tool")
)

// Instruments holds pre-created OTel metric instruments. Every measurement
// carries the lookup or tool name as an attribute.
type Instruments struct {
	QueryCount    metric.Int64Counter
	QueryDuration metric.Float64Histogram
	QueryErrors   metric.Int64Counter
	ToolDuration  metric.Float64Histogram
}

// NewInstruments creates metric instruments from the global MeterProvider.
func NewInstruments() *Instruments {
	return newInstrumentsFromMeter(otel.Meter(meterName))
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	return newInstrumentsFromMeter(noop.NewMeterProvider().Meter(meterName))
}

func newInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// The SDK hands back usable noop instruments alongside any error.
	queryCount, _ := meter.Int64Counter("flightdata.query.count",
		metric.WithDescription("Flight lookups that completed without error"),
	)
	queryDuration, _ := meter.Float64Histogram("flightdata.query.duration",
		metric.WithDescription("Flight lookup duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	queryErrors, _ := meter.Int64Counter("flightdata.query.errors",
		metric.WithDescription("Flight lookups that failed, whether swallowed or returned"),
	)
	toolDuration, _ := meter.Float64Histogram("flightdata.tool.duration",
		metric.WithDescription("MCP tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		QueryCount:    queryCount,
		QueryDuration: queryDuration,
		QueryErrors:   queryErrors,
		ToolDuration:  toolDuration,
	}
}

func (i *Instruments) RecordQueryDuration(ctx context.Context, lookup string, ms float64) {
	i.QueryDuration.Record(ctx, ms, metric.WithAttributes(lookupKey.String(lookup)))
}

func (i *Instruments) IncrementQueryCount(ctx context.Context, lookup string) {
	i.QueryCount.Add(ctx, 1, metric.WithAttributes(lookupKey.String(lookup)))
}

func (i *Instruments) IncrementQueryErrors(ctx context.Context, lookup string) {
	i.QueryErrors.Add(ctx, 1, metric.WithAttributes(lookupKey.String(lookup)))
}

func (i *Instruments) RecordToolDuration(ctx context.Context, tool string, ms float64) {
	i.ToolDuration.Record(ctx, ms, metric.WithAttributes(toolKey.String(tool)))
}
