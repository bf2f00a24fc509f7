package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Executor runs flight lookups against PostgreSQL, one read-only
// transaction per lookup.
type Executor struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

func NewExecutor(pool *pgxpool.Pool, queryTimeout time.Duration) *Executor {
	return &Executor{
		pool:         pool,
		queryTimeout: queryTimeout,
	}
}

func (e *Executor) Query(ctx context.Context, q domain.Query, params domain.Params) ([]domain.Record, error) {
	sql, args, err := domain.Bind(q.Text, params, domain.Dollar)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", q.Name, err)
	}

	if e.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.queryTimeout)
		defer cancel()
	}

	tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// SET LOCAL scopes the server-side timeout to this transaction.
	if e.queryTimeout > 0 {
		timeoutMS := e.queryTimeout.Milliseconds()
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%d'", timeoutMS)); err != nil {
			return nil, fmt.Errorf("setting statement timeout: %w", err)
		}
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("executing %s: %w", q.Name, err)
	}
	defer rows.Close()

	results, err := rowsToRecords(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return results, nil
}

func (e *Executor) Close() error {
	e.pool.Close()
	return nil
}

func (e *Executor) System() string {
	return "postgresql"
}
