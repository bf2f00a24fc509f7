package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names every flight lookup projects.
const (
	ColFlightID           = "FLIGHT_ID"
	ColOriginAirport      = "ORIGIN_AIRPORT"
	ColDestinationAirport = "DESTINATION_AIRPORT"
	ColAirline            = "AIRLINE"
	ColDelay              = "DELAY"
)

// RequiredColumns lists the columns a lookup template must project.
var RequiredColumns = []string{
	ColFlightID,
	ColOriginAirport,
	ColDestinationAirport,
	ColAirline,
	ColDelay,
}

// Record is one result row: column names in select order with their values.
// Column names are upper-cased so lookups read the same regardless of how
// the engine folds unquoted identifiers. Names are unique within a record.
type Record struct {
	columns []string
	values  []any
}

// NewRecord builds a Record. columns and values must have the same length.
// When a name repeats, as with "flights.*" followed by an alias of the same
// name, the later value replaces the earlier one and keeps its position.
func NewRecord(columns []string, values []any) Record {
	cols := make([]string, 0, len(columns))
	vals := make([]any, 0, len(values))
	seen := make(map[string]int, len(columns))
	for i, c := range columns {
		c = strings.ToUpper(c)
		if j, dup := seen[c]; dup {
			vals[j] = values[i]
			continue
		}
		seen[c] = len(cols)
		cols = append(cols, c)
		vals = append(vals, values[i])
	}
	return Record{columns: cols, values: vals}
}

// Columns returns the column names in select order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

func (r Record) Len() int { return len(r.columns) }

// Get returns the value of column col (case-insensitive).
func (r Record) Get(col string) (any, bool) {
	col = strings.ToUpper(col)
	for i, c := range r.columns {
		if c == col {
			return r.values[i], true
		}
	}
	return nil, false
}

// Int returns col as an int64, coercing the integer, float and text
// representations different drivers produce.
func (r Record) Int(col string) (int64, bool) {
	v, ok := r.Get(col)
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case int:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case []byte:
		i, err := strconv.ParseInt(string(n), 10, 64)
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Text returns col formatted as text. NULL reports false.
func (r Record) Text(col string) (string, bool) {
	v, ok := r.Get(col)
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return fmt.Sprintf("%v", s), true
	}
}

// MarshalJSON encodes the record as a JSON object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		v := r.values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding column %s: %w", c, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
