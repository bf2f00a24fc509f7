package sqldb

import (
	"context"
	"net/url"
	"strings"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const memoryDSN = ":memory:"

// SQLiteDSN converts a sqlite:// URI into a modernc.org/sqlite DSN.
//
//	sqlite:///data/flights.sqlite3  -> data/flights.sqlite3 (relative)
//	sqlite:////var/db/flights.db    -> /var/db/flights.db   (absolute)
//	sqlite:// or sqlite:///:memory: -> :memory:
//
// The query string is passed to the driver unchanged.
func SQLiteDSN(u *url.URL) string {
	path := strings.TrimPrefix(u.Path, "/")
	if u.Host != "" {
		// sqlite://data/flights.db: the first segment parsed as a host.
		path = u.Host + "/" + path
	}
	if path == "" {
		path = memoryDSN
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

// OpenSQLite opens the SQLite database named by u.
func OpenSQLite(ctx context.Context, u *url.URL, settings PoolSettings) (*Executor, error) {
	dsn := SQLiteDSN(u)

	// Every connection to :memory: gets its own empty database, so pin the
	// pool to a single connection that never expires.
	if strings.HasPrefix(dsn, memoryDSN) {
		settings.MaxOpenConns = 1
		settings.MaxIdleConns = 1
		settings.ConnMaxLifetime = 0
	}

	db, err := open(ctx, "sqlite", dsn, settings)
	if err != nil {
		return nil, err
	}
	return NewExecutor(db, "sqlite", domain.Question), nil
}
