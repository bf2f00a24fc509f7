package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSchema = `
	CREATE TABLE airlines (
		ID      INTEGER PRIMARY KEY,
		AIRLINE TEXT NOT NULL
	);

	CREATE TABLE flights (
		ID                  INTEGER PRIMARY KEY,
		YEAR                INTEGER NOT NULL,
		MONTH               INTEGER NOT NULL,
		DAY                 INTEGER NOT NULL,
		AIRLINE             INTEGER NOT NULL,
		ORIGIN_AIRPORT      TEXT NOT NULL,
		DESTINATION_AIRPORT TEXT NOT NULL,
		DEPARTURE_DELAY     INTEGER
	);

	INSERT INTO airlines (ID, AIRLINE) VALUES
		(1, 'Delta'),
		(2, 'United'),
		(3, 'Alaska');

	INSERT INTO flights (ID, YEAR, MONTH, DAY, AIRLINE, ORIGIN_AIRPORT, DESTINATION_AIRPORT, DEPARTURE_DELAY) VALUES
		(1, 2020, 1, 1, 1, 'SEA', 'JFK', 30),
		(2, 2020, 1, 1, 2, 'SFO', 'ORD', -4),
		(3, 2020, 1, 2, 1, 'SEA', 'ATL', 12),
		(4, 2020, 1, 1, 3, 'SEA', 'ANC', 0),
		(5, 2020, 1, 1, 9, 'LAX', 'SEA', 3),
		(6, 2021, 1, 1, 2, 'SEA', 'DEN', NULL);
`

func setupTestDB(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("flights"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	_, err = pool.Exec(ctx, testSchema)
	require.NoError(t, err)

	return pool, connStr
}
