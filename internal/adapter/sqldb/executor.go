package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
)

// Executor runs flight lookups on a database/sql pool. Each lookup holds a
// dedicated connection from the pool for its whole duration.
type Executor struct {
	db           *sql.DB
	system       string
	style        domain.PlaceholderStyle
	queryTimeout time.Duration
}

func NewExecutor(db *sql.DB, system string, style domain.PlaceholderStyle) *Executor {
	return &Executor{db: db, system: system, style: style}
}

// WithQueryTimeout bounds every lookup by d. Zero disables the bound.
func (e *Executor) WithQueryTimeout(d time.Duration) *Executor {
	e.queryTimeout = d
	return e
}

func (e *Executor) Query(ctx context.Context, q domain.Query, params domain.Params) ([]domain.Record, error) {
	query, args, err := domain.Bind(q.Text, params, e.style)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", q.Name, err)
	}

	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", q.Name, err)
	}
	defer func() { _ = rows.Close() }()

	return rowsToRecords(rows)
}

func (e *Executor) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("closing %s pool: %w", e.system, err)
	}
	return nil
}

func (e *Executor) System() string {
	return e.system
}
