package postgres

import (
	"fmt"

	"github.com/guillermoBallester/flightdata/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// rowsToRecords reads every row of rows into ordered records.
func rowsToRecords(rows pgx.Rows) ([]domain.Record, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}

	var result []domain.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("reading row values: %w", err)
		}
		result = append(result, domain.NewRecord(columns, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}
