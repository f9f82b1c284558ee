package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Scanner is the subset of *sql.Row and *sql.Rows used to decode one row.
type Scanner interface {
	Scan(dest ...any) error
}

// DecodeFunc converts the current row into a value.
type DecodeFunc[T any] func(row Scanner) (T, error)

// DecodePolicy controls how QueryAll reacts to a row that fails to decode.
type DecodePolicy int

const (
	// SkipInvalidRows drops rows that fail to decode and keeps going.
	// The returned slice may then be shorter than the number of rows
	// matched; every dropped row is logged at WARN.
	SkipInvalidRows DecodePolicy = iota

	// FailFast returns the first decode failure.
	FailFast
)

// String returns the configuration name of the policy.
func (p DecodePolicy) String() string {
	if p == FailFast {
		return "fail"
	}
	return "skip"
}

// ParseDecodePolicy maps "skip" and "fail" to a DecodePolicy.
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch s {
	case "", "skip":
		return SkipInvalidRows, nil
	case "fail":
		return FailFast, nil
	default:
		return SkipInvalidRows, fmt.Errorf("invalid decode policy %q: must be skip or fail", s)
	}
}

// DecodePolicy returns the policy the store was opened with.
func (s *Store) DecodePolicy() DecodePolicy {
	return s.policy
}

// QueryOne runs a query that must produce exactly one row.
// Zero rows yields a not-found error; a decode failure is returned as is.
func QueryOne[T any](ctx context.Context, s *Store, query string, decode DecodeFunc[T], args ...any) (T, error) {
	value, found, err := QueryOptional(ctx, s, query, decode, args...)
	if err != nil {
		return value, err
	}
	if !found {
		return value, notFound("query one")
	}
	return value, nil
}

// QueryOptional runs a query producing zero or one row.
// A missing row is reported through the boolean, not as an error.
func QueryOptional[T any](ctx context.Context, s *Store, query string, decode DecodeFunc[T], args ...any) (T, bool, error) {
	var zero T

	s.trace(query)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, false, classify("query", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return zero, false, classify("iterate rows", err)
		}
		return zero, false, nil
	}

	value, err := decode(rows)
	if err != nil {
		return zero, false, &Error{Code: ErrCodeStore, Op: "decode row", Err: err}
	}

	return value, true, nil
}

// QueryAll runs a query and decodes every row.
//
// Under SkipInvalidRows a row that fails to decode is omitted from the
// result instead of failing the whole listing. Under FailFast the first
// decode failure is returned. Returns an empty slice (not nil) if no rows
// match.
func QueryAll[T any](ctx context.Context, s *Store, query string, decode DecodeFunc[T], args ...any) ([]T, error) {
	s.trace(query)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query", err)
	}
	defer rows.Close()

	values := []T{}
	skipped := 0
	for rows.Next() {
		value, err := decode(rows)
		if err != nil {
			if s.policy == FailFast {
				return nil, &Error{Code: ErrCodeStore, Op: "decode row", Err: err}
			}
			skipped++
			s.logger.Warn("skipping row that failed to decode", "error", err)
			continue
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, classify("iterate rows", err)
	}

	if skipped > 0 {
		s.logger.Warn("rows skipped during query", "skipped", skipped, "returned", len(values))
	}

	return values, nil
}

// scanInt64 decodes a single integer column.
func scanInt64(row Scanner) (int64, error) {
	var n sql.NullInt64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n.Int64, nil
}
