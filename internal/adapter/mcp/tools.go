package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
	"github.com/guillermoBallester/flightdata/internal/core/service"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const serverName = "flightdata"

// Tool names.
const (
	toolFlightByID     = "get_flight_by_id"
	toolFlightsByDate  = "get_flights_by_date"
	toolDelayedAirline = "get_delayed_flights_by_airline"
	toolDelayedAirport = "get_delayed_flights_by_airport"
)

const (
	descFlightByID = "Look up a single flight by its numeric ID. " +
		"Returns a JSON array with at most one object holding FLIGHT_ID, AIRLINE (name), " +
		"ORIGIN_AIRPORT, DESTINATION_AIRPORT, DELAY and the flight date."

	descFlightsByDate = "List every flight scheduled on one calendar day, ordered by flight ID. " +
		"Returns a JSON array; an empty array means no flights that day."

	descDelayedAirline = "List flights with a positive departure delay operated by the named airline. " +
		"The airline name must match exactly, for example \"Delta Air Lines Inc.\"."

	descDelayedAirport = "List flights with a positive departure delay leaving the given origin airport. " +
		"Use the IATA code, for example \"LAX\"."
)

func RegisterTools(s *server.MCPServer, flights *service.FlightService, logger *slog.Logger) {
	s.AddTool(
		mcp.NewTool(toolFlightByID,
			mcp.WithDescription(descFlightByID),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Flight ID"),
			),
		),
		flightByIDHandler(flights, logger),
	)

	s.AddTool(
		mcp.NewTool(toolFlightsByDate,
			mcp.WithDescription(descFlightsByDate),
			mcp.WithNumber("day", mcp.Required(), mcp.Description("Day of month, 1-31")),
			mcp.WithNumber("month", mcp.Required(), mcp.Description("Month, 1-12")),
			mcp.WithNumber("year", mcp.Required(), mcp.Description("Four-digit year")),
		),
		flightsByDateHandler(flights, logger),
	)

	s.AddTool(
		mcp.NewTool(toolDelayedAirline,
			mcp.WithDescription(descDelayedAirline),
			mcp.WithString("airline",
				mcp.Required(),
				mcp.Description("Full airline name"),
			),
		),
		delayedByAirlineHandler(flights, logger),
	)

	s.AddTool(
		mcp.NewTool(toolDelayedAirport,
			mcp.WithDescription(descDelayedAirport),
			mcp.WithString("airport",
				mcp.Required(),
				mcp.Description("Origin airport IATA code"),
			),
		),
		delayedByAirportHandler(flights, logger),
	)
}

func flightByIDHandler(flights *service.FlightService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := intArg(request.GetArguments(), "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return recordsResult(logger, toolFlightByID)(flights.GetFlightByID(ctx, id))
	}
}

func flightsByDateHandler(flights *service.FlightService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		var date [3]int64
		for i, name := range []string{"day", "month", "year"} {
			v, err := intArg(args, name)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			date[i] = v
		}
		return recordsResult(logger, toolFlightsByDate)(flights.GetFlightsByDate(ctx, int(date[0]), int(date[1]), int(date[2])))
	}
}

func delayedByAirlineHandler(flights *service.FlightService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		airline, ok := request.GetArguments()["airline"].(string)
		if !ok || airline == "" {
			return mcp.NewToolResultError("airline is required"), nil
		}
		return recordsResult(logger, toolDelayedAirline)(flights.GetDelayedFlightsByAirline(ctx, airline))
	}
}

func delayedByAirportHandler(flights *service.FlightService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		airport, ok := request.GetArguments()["airport"].(string)
		if !ok || airport == "" {
			return mcp.NewToolResultError("airport is required"), nil
		}
		return recordsResult(logger, toolDelayedAirport)(flights.GetDelayedFlightsByAirport(ctx, airport))
	}
}

// recordsResult renders a lookup outcome as a tool result. Only a strict
// accessor ever hands back an error here.
func recordsResult(logger *slog.Logger, tool string) func([]domain.Record, error) (*mcp.CallToolResult, error) {
	return func(records []domain.Record, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, tool)), nil
		}

		data, err := json.Marshal(records)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

// sanitizeError maps a lookup failure to a message safe for MCP clients.
// Driver details only go to the server log.
func sanitizeError(logger *slog.Logger, err error, tool string) string {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &pgErr) && pgErr.Code == "57014":
		return "lookup timed out: try again or narrow the request"
	case errors.Is(err, domain.ErrClosed):
		return "flight data is unavailable: the server is shutting down"
	case errors.Is(err, domain.ErrMissingParam):
		return "lookup failed: missing parameter"
	}

	logger.Error("lookup failed",
		slog.String("mcp.tool", tool),
		slog.String("error.message", err.Error()),
	)
	return "internal error: check server logs for details"
}

// intArg reads a whole-number argument. JSON numbers decode as float64;
// numeric strings are accepted too.
func intArg(args map[string]any, name string) (int64, error) {
	switch v := args[name].(type) {
	case nil:
		return 0, fmt.Errorf("%s is required", name)
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<53 {
			return 0, fmt.Errorf("%s must be a whole number, got %v", name, v)
		}
		return int64(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number, got %s", name, v)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a whole number, got %q", name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", name, v)
	}
}
