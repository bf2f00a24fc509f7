package main

import (
	"time"

	"github.com/guillermoBallester/flightdata/internal/config"
	"github.com/spf13/pflag"
)

// flagValues holds raw flag destinations. Only flags the user actually set
// become Overrides, so env vars and the config file keep their say otherwise.
type flagValues struct {
	configFile      string
	databaseURL     string
	strictErrors    bool
	logLevel        string
	queryTimeout    time.Duration
	transport       string
	httpAddr        string
	httpBearerToken string
	otel            bool
	auditLog        string

	poolMaxConns        int32
	poolMinConns        int32
	poolMaxConnLifetime time.Duration
}

func registerFlags(fs *pflag.FlagSet) *flagValues {
	v := &flagValues{}
	fs.StringVarP(&v.configFile, "config", "c", "", "path to a YAML config file (env: CONFIG_FILE)")
	fs.StringVar(&v.databaseURL, "database-url", "", "connection URI, e.g. sqlite:///data/flights.sqlite3 or postgres://... (env: DATABASE_URL)")
	fs.BoolVar(&v.strictErrors, "strict-errors", false, "return lookup failures to clients instead of empty results (env: STRICT_ERRORS)")
	fs.StringVar(&v.logLevel, "log-level", "", "debug, info, warn or error (env: LOG_LEVEL)")
	fs.DurationVar(&v.queryTimeout, "query-timeout", 0, "per-lookup timeout (env: QUERY_TIMEOUT)")
	fs.StringVar(&v.transport, "transport", "", "stdio or http (env: TRANSPORT)")
	fs.StringVar(&v.httpAddr, "http-addr", "", "listen address for the http transport (env: HTTP_ADDR)")
	fs.StringVar(&v.httpBearerToken, "http-bearer-token", "", "bearer token required by the http transport (env: HTTP_BEARER_TOKEN)")
	fs.BoolVar(&v.otel, "otel", false, "export traces and metrics over OTLP (env: OTEL_ENABLED)")
	fs.StringVar(&v.auditLog, "audit-log", "", "NDJSON audit file, - for stderr (env: AUDIT_LOG)")
	fs.Int32Var(&v.poolMaxConns, "pool-max-conns", 0, "maximum open connections (env: POOL_MAX_CONNS)")
	fs.Int32Var(&v.poolMinConns, "pool-min-conns", 0, "minimum idle connections (env: POOL_MIN_CONNS)")
	fs.DurationVar(&v.poolMaxConnLifetime, "pool-max-conn-lifetime", 0, "maximum connection lifetime (env: POOL_MAX_CONN_LIFETIME)")
	return v
}

func (v *flagValues) overrides(fs *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	if fs.Changed("config") {
		o.ConfigFile = &v.configFile
	}
	if fs.Changed("database-url") {
		o.DatabaseURL = &v.databaseURL
	}
	if fs.Changed("strict-errors") {
		o.StrictErrors = &v.strictErrors
	}
	if fs.Changed("log-level") {
		o.LogLevel = &v.logLevel
	}
	if fs.Changed("query-timeout") {
		o.QueryTimeout = &v.queryTimeout
	}
	if fs.Changed("transport") {
		o.Transport = &v.transport
	}
	if fs.Changed("http-addr") {
		o.HTTPAddr = &v.httpAddr
	}
	if fs.Changed("http-bearer-token") {
		o.HTTPBearerToken = &v.httpBearerToken
	}
	if fs.Changed("otel") {
		o.OTelEnabled = &v.otel
	}
	if fs.Changed("audit-log") {
		o.AuditLog = &v.auditLog
	}
	if fs.Changed("pool-max-conns") {
		o.PoolMaxConns = &v.poolMaxConns
	}
	if fs.Changed("pool-min-conns") {
		o.PoolMinConns = &v.poolMinConns
	}
	if fs.Changed("pool-max-conn-lifetime") {
		o.PoolMaxConnLifetime = &v.poolMaxConnLifetime
	}
	return o
}
