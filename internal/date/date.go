// Package date provides Date, a calendar day that is today or in the past.
package date

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Layout is the textual form of a Date.
const Layout = "2006-01-02"

var (
	// ErrFuture indicates a date after today.
	ErrFuture = errors.New("date is in the future")

	// ErrFormat indicates text that is not a YYYY-MM-DD date.
	ErrFormat = errors.New("date must be a unix timestamp or have the form YYYY-MM-DD")
)

// now is replaced in tests.
var now = time.Now

// Date is a calendar day without time of day or zone.
type Date struct {
	t time.Time
}

// Today returns the current date in UTC.
func Today() Date {
	return fromTime(now())
}

func fromTime(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// New builds a date, rejecting days after today.
func New(year int, month time.Month, day int) (Date, error) {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime takes the UTC day of t, rejecting days after today.
func FromTime(t time.Time) (Date, error) {
	d := fromTime(t)
	if d.After(Today()) {
		return Date{}, fmt.Errorf("%s: %w", d, ErrFuture)
	}
	return d, nil
}

// FromUnix converts seconds since the epoch.
func FromUnix(seconds int64) (Date, error) {
	return FromTime(time.Unix(seconds, 0))
}

// Parse reads a YYYY-MM-DD date, rejecting days after today.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, ErrFormat)
	}
	return FromTime(t)
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.t.Format(Layout)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return d.t
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is a later day than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// MarshalJSON emits the YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a YYYY-MM-DD string or a unix timestamp in seconds.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '"' {
		seconds, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("parse date %s: %w", data, ErrFormat)
		}
		parsed, err := FromUnix(seconds)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer; dates are stored as YYYY-MM-DD text.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Stored dates are trusted, so no future check
// is applied. The driver hands DATETIME columns over as time.Time.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = fromTime(v)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(Layout) {
		s = s[:len(Layout)]
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", s, ErrFormat)
	}
	*d = fromTime(t)
	return nil
}
