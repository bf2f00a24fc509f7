package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/guillermoBallester/flightdata/internal/adapter/mcp"
	"github.com/guillermoBallester/flightdata/internal/audit"
	"github.com/guillermoBallester/flightdata/internal/config"
	"github.com/guillermoBallester/flightdata/internal/core/port"
	"github.com/guillermoBallester/flightdata/internal/flightdata"
	"github.com/guillermoBallester/flightdata/internal/telemetry"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

const serviceName = "flightdata"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flightdata",
		Short: "Read-only flight records lookups over MCP",
		Long: `flightdata serves four read-only lookups over a flights database:
a flight by ID, the flights of one day, and delayed flights by airline or
by origin airport. Clients reach them as MCP tools over stdio or HTTP.

Example usage:
  flightdata serve --database-url sqlite:///data/flights.sqlite3
  flightdata serve --transport http --http-bearer-token s3cret --database-url postgres://reader@db/flights`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newVersionCmd(os.Stdout))
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the flight lookups as MCP tools",
		Args:  cobra.NoArgs,
	}
	flags := registerFlags(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(flags.overrides(cmd.Flags()))
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()
		return run(ctx, cfg)
	}
	return cmd
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(out, "flightdata %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// stdout belongs to the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting flightdata",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("db.url", flightdata.RedactURI(cfg.DatabaseURL)),
		slog.Bool("strict_errors", cfg.StrictErrors),
		slog.String("query_timeout", cfg.QueryTimeout.String()),
		slog.String("transport", cfg.Transport),
	)

	var (
		tracer                      = telemetry.NoopTracer()
		inst   port.Instrumentation = telemetry.NoopInstruments()
	)
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, telemetry.Service{
			Name:         serviceName,
			Version:      version,
			DBSystem:     flightdata.System(cfg.DatabaseURL),
			Transport:    cfg.Transport,
			StrictErrors: cfg.StrictErrors,
		})
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown failed", slog.String("error.message", err.Error()))
			}
		}()
		tracer = provider.Tracer(serviceName)
		inst = telemetry.NewInstruments()
		logger.Info("opentelemetry enabled")
	}

	var auditor port.QueryAuditor = port.NoopAuditor{}
	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() { _ = fa.Close() }()
		auditor = fa
		logger.Info("audit log enabled", slog.String("file", cfg.AuditLog))
	}

	flights, err := flightdata.Open(ctx, cfg.DatabaseURL,
		flightdata.WithLogger(logger),
		flightdata.WithStrictErrors(cfg.StrictErrors),
		flightdata.WithQueryTimeout(cfg.QueryTimeout),
		flightdata.WithAuditor(auditor),
		flightdata.WithTracer(tracer),
		flightdata.WithInstrumentation(inst),
		flightdata.WithPool(flightdata.PoolSettings{
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		}),
	)
	if err != nil {
		return fmt.Errorf("opening flight database: %w", err)
	}
	defer func() {
		if err := flights.Close(); err != nil {
			logger.Error("closing flight database", slog.String("error.message", err.Error()))
		}
	}()

	mcpServer := mcp.NewServer(version, flights, logger, tracer, inst)

	switch cfg.Transport {
	case "http":
		err = serveHTTP(ctx, cfg, mcpServer, logger)
	default:
		logger.Info("serving MCP over stdio")
		err = mcpserver.NewStdioServer(mcpServer).Listen(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}
	if err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	handler := newHTTPHandler(mcpserver.NewStreamableHTTPServer(mcpServer), cfg.HTTPBearerToken, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(handler, "flightdata.http"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over http", slog.String("addr", cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
