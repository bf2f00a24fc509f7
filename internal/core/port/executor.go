package port

import (
	"context"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
)

// QueryExecutor is the connection factory behind the flight lookups. It
// binds params into a template, runs it on a scoped connection and reads
// every row before returning.
type QueryExecutor interface {
	Query(ctx context.Context, q domain.Query, params domain.Params) ([]domain.Record, error)
	// Close releases the underlying pool.
	Close() error
	// System names the engine for telemetry ("postgresql", "sqlite", "mysql").
	System() string
}
