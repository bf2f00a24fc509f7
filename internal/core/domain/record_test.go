package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_UpperCasesColumns(t *testing.T) {
	t.Parallel()
	r := NewRecord([]string{"flight_id", "Airline"}, []any{int64(1), "Delta"})

	assert.Equal(t, []string{"FLIGHT_ID", "AIRLINE"}, r.Columns())
	assert.Equal(t, 2, r.Len())

	v, ok := r.Get("flight_id")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRecord_Int(t *testing.T) {
	t.Parallel()
	r := NewRecord(
		[]string{"a", "b", "c", "d", "e", "f", "g"},
		[]any{int32(30), int64(-5), []byte("12"), "7", 3.0, 2.5, nil},
	)

	tests := []struct {
		col    string
		want   int64
		wantOK bool
	}{
		{"a", 30, true},
		{"b", -5, true},
		{"c", 12, true},
		{"d", 7, true},
		{"e", 3, true},
		{"f", 0, false},
		{"g", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		got, ok := r.Int(tt.col)
		assert.Equal(t, tt.wantOK, ok, "column %s", tt.col)
		assert.Equal(t, tt.want, got, "column %s", tt.col)
	}
}

func TestRecord_Text(t *testing.T) {
	t.Parallel()
	r := NewRecord([]string{"a", "b", "c", "d"}, []any{"SEA", []byte("JFK"), int64(4), nil})

	s, ok := r.Text("a")
	assert.True(t, ok)
	assert.Equal(t, "SEA", s)

	s, ok = r.Text("b")
	assert.True(t, ok)
	assert.Equal(t, "JFK", s)

	s, ok = r.Text("c")
	assert.True(t, ok)
	assert.Equal(t, "4", s)

	_, ok = r.Text("d")
	assert.False(t, ok)
}

func TestRecord_MarshalJSON_PreservesOrder(t *testing.T) {
	t.Parallel()
	r := NewRecord(
		[]string{"FLIGHT_ID", "AIRLINE", "ORIGIN_AIRPORT", "DELAY"},
		[]any{int64(1), []byte("Delta"), "SEA", nil},
	)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"FLIGHT_ID":1,"AIRLINE":"Delta","ORIGIN_AIRPORT":"SEA","DELAY":null}`, string(data))

	data, err = json.Marshal([]Record{})
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}

func TestNewRecord_RepeatedColumnTakesLaterValue(t *testing.T) {
	t.Parallel()
	// flights.* then airlines.AIRLINE AS AIRLINE: the name replaces the id.
	r := NewRecord(
		[]string{"id", "airline", "origin_airport", "AIRLINE", "FLIGHT_ID", "ORIGIN_AIRPORT"},
		[]any{int64(1), int64(1), "SEA", "Delta", int64(1), "SEA"},
	)

	assert.Equal(t, []string{"ID", "AIRLINE", "ORIGIN_AIRPORT", "FLIGHT_ID"}, r.Columns())
	airline, ok := r.Text("airline")
	require.True(t, ok)
	assert.Equal(t, "Delta", airline)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"ID":1,"AIRLINE":"Delta","ORIGIN_AIRPORT":"SEA","FLIGHT_ID":1}`, string(data))
}

func TestRecord_CopiesInput(t *testing.T) {
	t.Parallel()
	cols := []string{"a"}
	vals := []any{1}
	r := NewRecord(cols, vals)
	vals[0] = 2

	v, _ := r.Get("a")
	assert.Equal(t, 1, v)
}

func TestQueryError(t *testing.T) {
	t.Parallel()
	cause := fmt.Errorf("no such table: flights")
	err := error(&QueryError{Lookup: "flight_by_id", Err: cause})

	assert.True(t, errors.Is(err, ErrQueryFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "flight_by_id: no such table: flights", err.Error())

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "flight_by_id", qe.Lookup)
}
