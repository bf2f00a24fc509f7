package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConnection   = errors.New("database connection failed")
	ErrQueryFailed  = errors.New("query failed")
	ErrClosed       = errors.New("flight data accessor is closed")
	ErrMissingParam = errors.New("missing query parameter")
	ErrTemplate     = errors.New("invalid query template")
)

// QueryError reports a failed lookup. It matches ErrQueryFailed and unwraps
// to the driver error that caused it.
type QueryError struct {
	Lookup string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Lookup, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}
