// Package sqldb runs flight lookups through database/sql for the engines
// reached by a registered driver: SQLite (modernc.org/sqlite) and MySQL
// (github.com/go-sql-driver/mysql).
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PoolSettings tunes the database/sql pool. Zero values keep the
// database/sql defaults.
type PoolSettings struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// open opens driverName with dsn, applies settings and pings the database.
func open(ctx context.Context, driverName, dsn string, settings PoolSettings) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driverName, err)
	}

	if settings.MaxOpenConns > 0 {
		db.SetMaxOpenConns(settings.MaxOpenConns)
	}
	if settings.MaxIdleConns > 0 {
		db.SetMaxIdleConns(settings.MaxIdleConns)
	}
	if settings.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(settings.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s database (10s timeout): %w", driverName, err)
	}

	return db, nil
}
