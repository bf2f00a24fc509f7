package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
	"github.com/guillermoBallester/flightdata/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// FlightService is the flight data accessor. It owns its executor from
// construction until Close.
//
// With strict disabled, a failed lookup is logged and returns an empty
// result, so callers cannot tell "no rows" from "query failed". With strict
// enabled the failure comes back as a *domain.QueryError.
type FlightService struct {
	executor port.QueryExecutor
	auditor  port.QueryAuditor
	logger   *slog.Logger
	tracer   trace.Tracer
	inst     port.Instrumentation
	strict   bool

	closed    atomic.Bool
	closeOnce sync.Once
}

func NewFlightService(executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation, strict bool) *FlightService {
	if auditor == nil {
		auditor = port.NoopAuditor{}
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &FlightService{
		executor: executor,
		auditor:  auditor,
		logger:   logger,
		tracer:   tracer,
		inst:     inst,
		strict:   strict,
	}
}

// GetFlightByID returns the flight with the given ID joined with its airline
// name. At most one record is expected but not enforced.
func (s *FlightService) GetFlightByID(ctx context.Context, id int64) ([]domain.Record, error) {
	return s.run(ctx, domain.QueryFlightByID, domain.Params{"id": id})
}

// GetFlightsByDate returns the flights of one day ordered by flight ID.
func (s *FlightService) GetFlightsByDate(ctx context.Context, day, month, year int) ([]domain.Record, error) {
	return s.run(ctx, domain.QueryFlightsByDate, domain.Params{"day": day, "month": month, "year": year})
}

// GetDelayedFlightsByAirline returns flights with a positive departure delay
// operated by the named airline.
func (s *FlightService) GetDelayedFlightsByAirline(ctx context.Context, airline string) ([]domain.Record, error) {
	return s.run(ctx, domain.QueryDelayedFlightsByAirline, domain.Params{"airline": airline})
}

// GetDelayedFlightsByAirport returns flights with a positive departure delay
// leaving the given origin airport.
func (s *FlightService) GetDelayedFlightsByAirport(ctx context.Context, airport string) ([]domain.Record, error) {
	return s.run(ctx, domain.QueryDelayedFlightsByAirport, domain.Params{"airport": airport})
}

// Close releases the executor. Only the first call does any work; the
// accessor cannot be reopened.
func (s *FlightService) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.executor.Close()
	})
	return err
}

func (s *FlightService) run(ctx context.Context, q domain.Query, params domain.Params) ([]domain.Record, error) {
	ctx, span := s.tracer.Start(ctx, "FlightService."+q.Name,
		trace.WithAttributes(
			attribute.String("db.system", s.executor.System()),
			attribute.String("db.operation.name", "SELECT"),
			attribute.String("flight.lookup", q.Name),
		),
	)
	defer span.End()

	if s.closed.Load() {
		return s.fail(ctx, span, q, domain.ErrClosed)
	}

	start := time.Now()
	records, err := s.executor.Query(ctx, q, params)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordQueryDuration(ctx, q.Name, float64(durationMS))

	s.auditor.Record(ctx, port.AuditEntry{
		Lookup:       q.Name,
		Params:       params,
		RowsReturned: len(records),
		DurationMS:   durationMS,
		Err:          err,
	})

	if err != nil {
		return s.fail(ctx, span, q, err)
	}

	s.inst.IncrementQueryCount(ctx, q.Name)
	span.SetAttributes(attribute.Int("db.response.returned_rows", len(records)))

	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

func (s *FlightService) fail(ctx context.Context, span trace.Span, q domain.Query, err error) ([]domain.Record, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.inst.IncrementQueryErrors(ctx, q.Name)

	qerr := &domain.QueryError{Lookup: q.Name, Err: err}
	if s.strict {
		return nil, qerr
	}

	s.logger.ErrorContext(ctx, "lookup failed, returning no rows",
		slog.String("flight.lookup", q.Name),
		slog.String("db.system", s.executor.System()),
		slog.String("error.type", errorType(err)),
		slog.String("error.message", err.Error()),
	)
	return []domain.Record{}, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrClosed):
		return "closed"
	case errors.Is(err, domain.ErrMissingParam):
		return "bind_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "query_error"
	}
}
