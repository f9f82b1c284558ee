package store

import (
	"context"
	"fmt"
)

// Entity is implemented by every type with a dedicated table.
//
// Table must be defined on the value receiver and must not read the
// receiver: it is called on the zero value to resolve table names for keys.
type Entity interface {
	Table() *Table
}

// Insertable entities can be written with Insert.
type Insertable interface {
	Entity

	// Values returns one argument per declared column, in declared order,
	// matching the placeholders of Table().InsertStatement().
	Values() []any
}

// Selectable entities can be read back. O is the public output shape, which
// may omit or transform stored fields (a password hash, a large payload).
type Selectable[O any] interface {
	Entity

	// Decode converts a row of Table().SelectAllStatement() into the output.
	Decode(row Scanner) (O, error)
}

// Referenceable entities can describe their rows with a short label, used to
// render foreign keys pointing at them.
type Referenceable interface {
	Entity

	// DescribeStatement selects (id, label) for every row.
	DescribeStatement() string
}

// DescribeBy builds a describe statement selecting the id and the given
// label expression. The expression is part of the entity declaration and
// must never contain user input.
func DescribeBy(t *Table, labelExpression string) string {
	return "SELECT id, " + labelExpression + " FROM " + t.Name()
}

// Insert writes value into its table and returns the key the database
// assigned. Constraint failures (for instance a dangling foreign key) are
// reported as ErrCodeConstraint.
func Insert[E Insertable](ctx context.Context, s *Store, value E) (Key[E], error) {
	t := value.Table()
	if !t.Indexed() {
		return Key[E]{}, fmt.Errorf("insert %s: table has no id column", t.Name())
	}

	res, err := s.Exec(ctx, t.InsertStatement(), value.Values()...)
	if err != nil {
		return Key[E]{}, fmt.Errorf("insert %s: %w", t.Name(), err)
	}

	return KeyFrom[E](res.LastInsertID), nil
}

// InsertRecord inserts value and pairs it with its new key.
func InsertRecord[E Insertable](ctx context.Context, s *Store, value E) (Record[E], error) {
	key, err := Insert(ctx, s, value)
	if err != nil {
		return Record[E]{}, err
	}
	return Record[E]{Key: key, Value: value}, nil
}
