package domain

// Query is a fixed lookup statement with :name placeholders.
type Query struct {
	Name string
	Text string
}

// Params binds placeholder names to scalar values.
type Params map[string]any

// Every lookup projects FLIGHT_ID, ORIGIN_AIRPORT, DESTINATION_AIRPORT,
// AIRLINE and DELAY. VerifyTemplates enforces this.

// QueryFlightByID returns every flights column. The aliases after
// flights.* override the raw AIRLINE id with the airline name and add the
// required names; NewRecord keeps one value per name.
var QueryFlightByID = Query{
	Name: "flight_by_id",
	Text: `
	SELECT
		flights.*,
		airlines.AIRLINE AS AIRLINE,
		flights.AIRLINE AS AIRLINE_ID,
		flights.ID AS FLIGHT_ID,
		flights.ORIGIN_AIRPORT AS ORIGIN_AIRPORT,
		flights.DESTINATION_AIRPORT AS DESTINATION_AIRPORT,
		flights.DEPARTURE_DELAY AS DELAY
	FROM flights
	JOIN airlines
		ON flights.AIRLINE = airlines.ID
	WHERE flights.ID = :id`,
}

// QueryFlightsByDate uses a LEFT JOIN so flights whose airline row is
// missing still come back, with a NULL airline name.
var QueryFlightsByDate = Query{
	Name: "flights_by_date",
	Text: `
	SELECT
		flights.ID AS FLIGHT_ID,
		airlines.AIRLINE AS AIRLINE,
		flights.AIRLINE AS AIRLINE_ID,
		flights.ORIGIN_AIRPORT AS ORIGIN_AIRPORT,
		flights.DESTINATION_AIRPORT AS DESTINATION_AIRPORT,
		flights.DEPARTURE_DELAY AS DELAY,
		flights.DAY AS DAY,
		flights.MONTH AS MONTH,
		flights.YEAR AS YEAR
	FROM flights
	LEFT JOIN airlines
		ON flights.AIRLINE = airlines.ID
	WHERE flights.DAY = :day
		AND flights.MONTH = :month
		AND flights.YEAR = :year
	ORDER BY flights.ID`,
}

var QueryDelayedFlightsByAirline = Query{
	Name: "delayed_flights_by_airline",
	Text: `
	SELECT
		flights.ID AS FLIGHT_ID,
		airlines.AIRLINE AS AIRLINE,
		flights.ORIGIN_AIRPORT AS ORIGIN_AIRPORT,
		flights.DESTINATION_AIRPORT AS DESTINATION_AIRPORT,
		flights.DEPARTURE_DELAY AS DELAY
	FROM flights
	JOIN airlines
		ON flights.AIRLINE = airlines.ID
	WHERE flights.DEPARTURE_DELAY > 0
		AND airlines.AIRLINE = :airline`,
}

var QueryDelayedFlightsByAirport = Query{
	Name: "delayed_flights_by_airport",
	Text: `
	SELECT
		flights.ID AS FLIGHT_ID,
		airlines.AIRLINE AS AIRLINE,
		flights.ORIGIN_AIRPORT AS ORIGIN_AIRPORT,
		flights.DESTINATION_AIRPORT AS DESTINATION_AIRPORT,
		flights.DEPARTURE_DELAY AS DELAY
	FROM flights
	JOIN airlines
		ON flights.AIRLINE = airlines.ID
	WHERE flights.DEPARTURE_DELAY > 0
		AND flights.ORIGIN_AIRPORT = :airport`,
}

// Lookups lists every lookup template.
var Lookups = []Query{
	QueryFlightByID,
	QueryFlightsByDate,
	QueryDelayedFlightsByAirline,
	QueryDelayedFlightsByAirport,
}
