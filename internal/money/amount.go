// Package money provides Amount, a fixed-point sum of money stored as an
// integer count of cents.
package money

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrFractionTooLong indicates more than two digits after the separator.
	ErrFractionTooLong = errors.New("amount has more than two fractional digits")

	// ErrTooManySeparators indicates more than one decimal separator.
	ErrTooManySeparators = errors.New("amount has more than one decimal separator")

	// ErrInvalidNumber indicates a part that is empty or not made of digits,
	// or a value that does not fit.
	ErrInvalidNumber = errors.New("amount is not a number")
)

// Amount is a sum of money in cents.
type Amount struct {
	cents int64
}

// FromCents wraps a count of cents.
func FromCents(cents int64) Amount {
	return Amount{cents: cents}
}

// FromInt converts whole units.
func FromInt(units int64) Amount {
	return Amount{cents: units * 100}
}

// FromFloat converts a floating point value, rounded to the nearest cent.
func FromFloat(f float64) Amount {
	return Amount{cents: int64(math.Round(f * 100))}
}

// Parse reads an amount written as "123", "123.4", "123.45" or "123,45".
// A leading '-' makes it negative.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)

	negative := strings.HasPrefix(s, "-")
	body := strings.TrimPrefix(s, "-")

	parts := strings.Split(strings.ReplaceAll(body, ",", "."), ".")
	if len(parts) > 2 {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, ErrTooManySeparators)
	}

	whole, err := parseDigits(parts[0])
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}

	var fraction int64
	if len(parts) == 2 {
		digits := parts[1]
		if len(digits) > 2 {
			return Amount{}, fmt.Errorf("parse amount %q: %w", s, ErrFractionTooLong)
		}
		fraction, err = parseDigits(digits)
		if err != nil {
			return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
		}
		// "4" after the separator means 40 cents.
		if len(digits) == 1 {
			fraction *= 10
		}
	}

	// Negative amounts reach one cent further than positive ones.
	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}
	if uint64(whole) > (limit-uint64(fraction))/100 {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, ErrInvalidNumber)
	}

	// A magnitude of 1<<63 wraps to math.MinInt64, which negation keeps.
	cents := int64(uint64(whole)*100 + uint64(fraction))
	if negative {
		cents = -cents
	}
	return Amount{cents: cents}, nil
}

func parseDigits(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidNumber
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidNumber
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

// Cents returns the amount in cents.
func (a Amount) Cents() int64 {
	return a.cents
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{cents: a.cents + b.cents}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{cents: a.cents - b.cents}
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.cents == 0
}

// String renders the amount with exactly two decimals, e.g. "-3.05".
func (a Amount) String() string {
	sign := ""
	magnitude := uint64(a.cents)
	if a.cents < 0 {
		sign = "-"
		magnitude = uint64(-(a.cents + 1)) + 1
	}
	return fmt.Sprintf("%s%d.%02d", sign, magnitude/100, magnitude%100)
}

// MarshalJSON emits the amount as a string, so no precision is lost.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string or a JSON number. Strings follow
// Parse; numbers that Parse rejects, such as "123.454" or "1e2", are read
// as floats and rounded to the nearest cent.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		parsed, err := Parse(text)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("unmarshal amount: %w", err)
	}
	if parsed, err := Parse(number.String()); err == nil {
		*a = parsed
		return nil
	}

	f, err := number.Float64()
	if err != nil {
		return fmt.Errorf("unmarshal amount %s: %w", number, ErrInvalidNumber)
	}
	if math.Abs(f*100) >= math.MaxInt64 {
		return fmt.Errorf("unmarshal amount %s: %w", number, ErrInvalidNumber)
	}
	*a = FromFloat(f)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as cents.
func (a Amount) Value() (driver.Value, error) {
	return a.cents, nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		a.cents = v
		return nil
	case float64:
		a.cents = int64(math.Round(v))
		return nil
	case nil:
		// SUM over no rows.
		a.cents = 0
		return nil
	default:
		return fmt.Errorf("scan amount: unsupported type %T", src)
	}
}
