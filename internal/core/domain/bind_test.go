package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_Dollar(t *testing.T) {
	t.Parallel()
	sql, args, err := Bind("SELECT * FROM flights WHERE DAY = :day AND MONTH = :month", Params{"day": 1, "month": 2}, Dollar)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM flights WHERE DAY = $1 AND MONTH = $2", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestBind_Question(t *testing.T) {
	t.Parallel()
	sql, args, err := Bind("WHERE a = :x AND b = :y", Params{"x": "SEA", "y": 7}, Question)
	require.NoError(t, err)
	assert.Equal(t, "WHERE a = ? AND b = ?", sql)
	assert.Equal(t, []any{"SEA", 7}, args)
}

func TestBind_RepeatedName(t *testing.T) {
	t.Parallel()

	sql, args, err := Bind("a = :id OR b = :id", Params{"id": 5}, Dollar)
	require.NoError(t, err)
	assert.Equal(t, "a = $1 OR b = $1", sql)
	assert.Equal(t, []any{5}, args)

	sql, args, err = Bind("a = :id OR b = :id", Params{"id": 5}, Question)
	require.NoError(t, err)
	assert.Equal(t, "a = ? OR b = ?", sql)
	assert.Equal(t, []any{5, 5}, args)
}

func TestBind_IgnoresCastsAndQuotes(t *testing.T) {
	t.Parallel()
	sql, args, err := Bind(`SELECT ID::text, ':nope', ":col" FROM t WHERE x = :x`, Params{"x": 1}, Dollar)
	require.NoError(t, err)
	assert.Equal(t, `SELECT ID::text, ':nope', ":col" FROM t WHERE x = $1`, sql)
	assert.Equal(t, []any{1}, args)
}

func TestBind_MissingParam(t *testing.T) {
	t.Parallel()
	_, _, err := Bind("WHERE ID = :id", Params{}, Dollar)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingParam))
	assert.Contains(t, err.Error(), `"id"`)
}

func TestBind_NoPlaceholders(t *testing.T) {
	t.Parallel()
	sql, args, err := Bind("SELECT 1", nil, Question)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", sql)
	assert.Empty(t, args)
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"id"}, Placeholders(QueryFlightByID.Text))
	assert.Equal(t, []string{"day", "month", "year"}, Placeholders(QueryFlightsByDate.Text))
	assert.Equal(t, []string{"airline"}, Placeholders(QueryDelayedFlightsByAirline.Text))
	assert.Equal(t, []string{"airport"}, Placeholders(QueryDelayedFlightsByAirport.Text))
	assert.Empty(t, Placeholders("SELECT 1::int"))
}
