package store

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Key parse errors. Each one names the part of the input that was invalid.
var (
	// ErrKeyFormat indicates the input is neither an integer nor a
	// three-part "/<table>/<id>" path.
	ErrKeyFormat = errors.New("invalid key format")

	// ErrKeyTableMismatch indicates the path names a different table.
	ErrKeyTableMismatch = errors.New("key table name mismatch")

	// ErrKeyNumber indicates the trailing segment is not an integer.
	ErrKeyNumber = errors.New("key id is not an integer")
)

// Key is the primary key of a row of entity E.
//
// At runtime it is a single int64; E only exists for the type checker, so a
// Key[Person] can never be passed where a Key[Document] is expected. Keys are
// immutable values and safe to share between goroutines.
type Key[E Entity] struct {
	id int64
}

// KeyFrom wraps a raw integer id. It always succeeds.
func KeyFrom[E Entity](id int64) Key[E] {
	return Key[E]{id: id}
}

// Int64 returns the raw id.
func (k Key[E]) Int64() int64 {
	return k.id
}

// TableName returns the name of the table the key belongs to.
func (k Key[E]) TableName() string {
	var entity E
	return entity.Table().Name()
}

// String renders the canonical form "/<table>/<id>".
func (k Key[E]) String() string {
	return "/" + k.TableName() + "/" + strconv.FormatInt(k.id, 10)
}

// ParseKey accepts either a bare integer or the canonical "/<table>/<id>".
// For the path form the table segment must equal E's table name.
func ParseKey[E Entity](s string) (Key[E], error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KeyFrom[E](id), nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 || parts[0] != "" {
		return Key[E]{}, fmt.Errorf("parse key %q: %w", s, ErrKeyFormat)
	}

	var entity E
	if parts[1] != entity.Table().Name() {
		return Key[E]{}, fmt.Errorf("parse key %q: %w: expected %s", s, ErrKeyTableMismatch, entity.Table().Name())
	}

	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Key[E]{}, fmt.Errorf("parse key %q: %w: %w", s, ErrKeyNumber, err)
	}

	return KeyFrom[E](id), nil
}

// MarshalText implements encoding.TextMarshaler using the canonical form.
func (k Key[E]) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; either form is accepted.
func (k *Key[E]) UnmarshalText(text []byte) error {
	parsed, err := ParseKey[E](string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalJSON always emits the canonical string form.
func (k Key[E]) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON accepts a JSON string in either textual form or a JSON integer.
func (k *Key[E]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '"' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("parse key %s: %w", data, ErrKeyFormat)
		}
		*k = KeyFrom[E](id)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

// Value implements driver.Valuer; keys bind as integers.
func (k Key[E]) Value() (driver.Value, error) {
	return k.id, nil
}

// Scan implements sql.Scanner for integer columns.
func (k *Key[E]) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		k.id = v
		return nil
	case nil:
		return fmt.Errorf("scan key of %s: NULL value", k.TableName())
	default:
		return fmt.Errorf("scan key of %s: unsupported type %T", k.TableName(), src)
	}
}
