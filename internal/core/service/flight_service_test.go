package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
	"github.com/guillermoBallester/flightdata/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- mock QueryExecutor ---

type mockExecutor struct {
	calls      int
	lastQuery  domain.Query
	lastParams domain.Params
	result     []domain.Record
	err        error
	closeCalls int
	closeErr   error
}

func (m *mockExecutor) Query(_ context.Context, q domain.Query, params domain.Params) ([]domain.Record, error) {
	m.calls++
	m.lastQuery = q
	m.lastParams = params
	return m.result, m.err
}

func (m *mockExecutor) Close() error {
	m.closeCalls++
	return m.closeErr
}

func (m *mockExecutor) System() string { return "sqlite" }

// --- mock QueryAuditor ---

type captureAuditor struct {
	entries []port.AuditEntry
}

func (c *captureAuditor) Record(_ context.Context, e port.AuditEntry) {
	c.entries = append(c.entries, e)
}
func (c *captureAuditor) Close() error { return nil }

// --- mock Instrumentation ---

type countingInst struct {
	port.NoopInstrumentation
	queries int
	errors  int
}

func (c *countingInst) IncrementQueryCount(context.Context, string)  { c.queries++ }
func (c *countingInst) IncrementQueryErrors(context.Context, string) { c.errors++ }

func flightRecord(id int64, airline string, delay int64) domain.Record {
	return domain.NewRecord(
		[]string{"FLIGHT_ID", "AIRLINE", "ORIGIN_AIRPORT", "DESTINATION_AIRPORT", "DELAY"},
		[]any{id, airline, "SEA", "JFK", delay},
	)
}

// --- tests ---

func TestFlightService_LookupsBindTemplates(t *testing.T) {
	tests := []struct {
		name       string
		call       func(*FlightService) ([]domain.Record, error)
		wantQuery  domain.Query
		wantParams domain.Params
	}{
		{
			name:       "by id",
			call:       func(s *FlightService) ([]domain.Record, error) { return s.GetFlightByID(context.Background(), 42) },
			wantQuery:  domain.QueryFlightByID,
			wantParams: domain.Params{"id": int64(42)},
		},
		{
			name: "by date",
			call: func(s *FlightService) ([]domain.Record, error) {
				return s.GetFlightsByDate(context.Background(), 1, 2, 2015)
			},
			wantQuery:  domain.QueryFlightsByDate,
			wantParams: domain.Params{"day": 1, "month": 2, "year": 2015},
		},
		{
			name: "delayed by airline",
			call: func(s *FlightService) ([]domain.Record, error) {
				return s.GetDelayedFlightsByAirline(context.Background(), "Delta Air Lines Inc.")
			},
			wantQuery:  domain.QueryDelayedFlightsByAirline,
			wantParams: domain.Params{"airline": "Delta Air Lines Inc."},
		},
		{
			name: "delayed by airport",
			call: func(s *FlightService) ([]domain.Record, error) {
				return s.GetDelayedFlightsByAirport(context.Background(), "LAX")
			},
			wantQuery:  domain.QueryDelayedFlightsByAirport,
			wantParams: domain.Params{"airport": "LAX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{result: []domain.Record{flightRecord(1, "Delta", 30)}}
			svc := NewFlightService(exec, nil, testLogger(), nil, nil, false)

			rows, err := tt.call(svc)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, 1, exec.calls)
			assert.Equal(t, tt.wantQuery.Name, exec.lastQuery.Name)
			assert.Equal(t, tt.wantParams, exec.lastParams)
		})
	}
}

func TestFlightService_EmptyResultIsNonNil(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewFlightService(exec, nil, testLogger(), nil, nil, false)

	rows, err := svc.GetFlightByID(context.Background(), 999)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFlightService_LenientSwallowsErrors(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))
	exec := &mockExecutor{err: fmt.Errorf("datatype mismatch")}
	inst := &countingInst{}
	svc := NewFlightService(exec, nil, logger, nil, inst, false)

	rows, err := svc.GetFlightsByDate(context.Background(), 1, 1, 2015)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	assert.Contains(t, logBuf.String(), "lookup failed")
	assert.Contains(t, logBuf.String(), "datatype mismatch")
	assert.Contains(t, logBuf.String(), `"flight.lookup":"flights_by_date"`)
	assert.Equal(t, 1, inst.errors)
	assert.Equal(t, 0, inst.queries)
}

func TestFlightService_StrictReturnsQueryError(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	exec := &mockExecutor{err: cause}
	svc := NewFlightService(exec, nil, testLogger(), nil, nil, true)

	rows, err := svc.GetDelayedFlightsByAirport(context.Background(), "SEA")
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, domain.ErrQueryFailed))
	assert.True(t, errors.Is(err, cause))

	var qe *domain.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "delayed_flights_by_airport", qe.Lookup)
}

func TestFlightService_AuditsEveryLookup(t *testing.T) {
	exec := &mockExecutor{result: []domain.Record{flightRecord(1, "Delta", 5), flightRecord(2, "Delta", 9)}}
	aud := &captureAuditor{}
	svc := NewFlightService(exec, aud, testLogger(), nil, nil, false)

	_, err := svc.GetDelayedFlightsByAirline(context.Background(), "Delta")
	require.NoError(t, err)

	exec.err = fmt.Errorf("boom")
	_, err = svc.GetDelayedFlightsByAirline(context.Background(), "Delta")
	require.NoError(t, err)

	require.Len(t, aud.entries, 2)
	assert.Equal(t, "delayed_flights_by_airline", aud.entries[0].Lookup)
	assert.Equal(t, 2, aud.entries[0].RowsReturned)
	assert.Equal(t, map[string]any{"airline": "Delta"}, aud.entries[0].Params)
	assert.NoError(t, aud.entries[0].Err)
	assert.EqualError(t, aud.entries[1].Err, "boom")
}

func TestFlightService_Close(t *testing.T) {
	exec := &mockExecutor{closeErr: fmt.Errorf("close failed")}
	svc := NewFlightService(exec, nil, testLogger(), nil, nil, true)

	assert.EqualError(t, svc.Close(), "close failed")
	assert.NoError(t, svc.Close(), "second Close is a no-op")
	assert.Equal(t, 1, exec.closeCalls)

	_, err := svc.GetFlightByID(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrClosed))
	assert.Equal(t, 0, exec.calls, "executor must not be used after Close")
}

func TestFlightService_ClosedLenient(t *testing.T) {
	exec := &mockExecutor{}
	svc := NewFlightService(exec, nil, testLogger(), nil, nil, false)
	require.NoError(t, svc.Close())

	rows, err := svc.GetFlightByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 0, exec.calls)
}

func TestFlightService_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	exec := &mockExecutor{err: fmt.Errorf("boom")}
	svc := NewFlightService(exec, nil, testLogger(), tp.Tracer("test"), nil, false)

	_, _ = svc.GetFlightByID(context.Background(), 1)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "FlightService.flight_by_id", spans[0].Name)
	assert.Equal(t, "Error", spans[0].Status.Code.String())
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "closed", errorType(domain.ErrClosed))
	assert.Equal(t, "bind_error", errorType(fmt.Errorf("binding: %w", domain.ErrMissingParam)))
	assert.Equal(t, "timeout", errorType(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", errorType(context.Canceled))
	assert.Equal(t, "query_error", errorType(fmt.Errorf("x")))
}
