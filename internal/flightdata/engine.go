// Package flightdata opens the flight data accessor for a connection URI.
package flightdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/guillermoBallester/flightdata/internal/adapter/postgres"
	"github.com/guillermoBallester/flightdata/internal/adapter/sqldb"
	"github.com/guillermoBallester/flightdata/internal/core/domain"
	"github.com/guillermoBallester/flightdata/internal/core/port"
	"github.com/guillermoBallester/flightdata/internal/core/service"
)

// Open creates the engine for uri, checks that it is reachable and returns
// the accessor that owns it. Every failure matches domain.ErrConnection
// except a broken lookup template, which matches domain.ErrTemplate.
//
// Supported schemes: postgres, postgresql, sqlite, mysql. SQLAlchemy-style
// driver suffixes (postgresql+psycopg2, mysql+pymysql) are accepted.
func Open(ctx context.Context, uri string, opts ...Option) (*service.FlightService, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if err := domain.VerifyTemplates(); err != nil {
		return nil, err
	}

	executor, err := openExecutor(ctx, uri, o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}

	o.logger.InfoContext(ctx, "flight database connected",
		slog.String("db.system", executor.System()),
		slog.String("db.url", RedactURI(uri)),
	)

	return service.NewFlightService(executor, o.auditor, o.logger, o.tracer, o.inst, o.strict), nil
}

func openExecutor(ctx context.Context, uri string, o *options) (port.QueryExecutor, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parsing connection URI: %w", err)
	}

	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	switch scheme {
	case "postgres", "postgresql":
		u.Scheme = scheme
		pool, err := postgres.NewPool(ctx, u.String(), postgres.PoolSettings{
			MaxConns:        o.pool.MaxConns,
			MinConns:        o.pool.MinConns,
			MaxConnLifetime: o.pool.MaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		return postgres.NewExecutor(pool, o.queryTimeout), nil

	case "sqlite", "sqlite3":
		exec, err := sqldb.OpenSQLite(ctx, u, sqlPool(o.pool))
		if err != nil {
			return nil, err
		}
		return exec.WithQueryTimeout(o.queryTimeout), nil

	case "mysql", "mariadb":
		exec, err := sqldb.OpenMySQL(ctx, u, sqlPool(o.pool))
		if err != nil {
			return nil, err
		}
		return exec.WithQueryTimeout(o.queryTimeout), nil

	case "":
		return nil, fmt.Errorf("connection URI %q has no scheme", RedactURI(uri))
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
}

// System returns the db.system name of the engine uri selects, without
// connecting. Unsupported or unparseable URIs return "".
func System(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	scheme, _, _ := strings.Cut(strings.ToLower(u.Scheme), "+")
	switch scheme {
	case "postgres", "postgresql":
		return "postgresql"
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mysql", "mariadb":
		return "mysql"
	default:
		return ""
	}
}

func sqlPool(p PoolSettings) sqldb.PoolSettings {
	return sqldb.PoolSettings{
		MaxOpenConns:    int(p.MaxConns),
		MaxIdleConns:    int(p.MinConns),
		ConnMaxLifetime: p.MaxConnLifetime,
	}
}

// RedactURI replaces the password in uri with "***". Unparseable input is
// fully masked.
func RedactURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		if _, hasPwd := u.User.Password(); hasPwd {
			u.User = url.UserPassword(u.User.Username(), "***")
		}
	}
	return u.String()
}
