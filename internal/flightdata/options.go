package flightdata

import (
	"log/slog"
	"time"

	"github.com/guillermoBallester/flightdata/internal/core/port"
	"go.opentelemetry.io/otel/trace"
)

// PoolSettings are the driver-independent pool knobs.
type PoolSettings struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type options struct {
	logger       *slog.Logger
	strict       bool
	auditor      port.QueryAuditor
	tracer       trace.Tracer
	inst         port.Instrumentation
	pool         PoolSettings
	queryTimeout time.Duration
}

// Option configures Open.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger:       slog.Default(),
		queryTimeout: 10 * time.Second,
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStrictErrors makes lookups return query failures instead of logging
// them and returning no rows.
func WithStrictErrors(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

func WithAuditor(a port.QueryAuditor) Option {
	return func(o *options) { o.auditor = a }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func WithInstrumentation(inst port.Instrumentation) Option {
	return func(o *options) { o.inst = inst }
}

func WithPool(p PoolSettings) Option {
	return func(o *options) { o.pool = p }
}

// WithQueryTimeout bounds each lookup. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) { o.queryTimeout = d }
}
