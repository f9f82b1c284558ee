package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrorCode categorizes errors surfaced by the store.
type ErrorCode string

const (
	// ErrCodeStore is any database failure not classified otherwise
	// (connection failure, malformed statement, disk I/O).
	ErrCodeStore ErrorCode = "STORE"

	// ErrCodeConstraint indicates a unique, foreign key, not-null or check
	// constraint rejected the statement.
	ErrCodeConstraint ErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeNotFound indicates that no row matched an identifier that was
	// expected to exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Error is returned by every store operation that talks to the database.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the failed operation, e.g. "insert persons".
	Op string

	// Err is the underlying driver error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

// Unwrap returns the underlying driver error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsConstraintViolation reports whether err is a constraint violation.
// Uses errors.As to handle wrapped errors.
func IsConstraintViolation(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeConstraint
	}
	return false
}

// IsNotFound reports whether err signals a missing row.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeNotFound
	}
	return false
}

// classify wraps a driver error into an *Error with the matching code.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Code: ErrCodeNotFound, Op: op, Err: err}
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return &Error{Code: ErrCodeConstraint, Op: op, Err: err}
	}

	return &Error{Code: ErrCodeStore, Op: op, Err: err}
}

// notFound builds a not-found error for an operation without a driver error.
func notFound(op string) error {
	return &Error{Code: ErrCodeNotFound, Op: op}
}
