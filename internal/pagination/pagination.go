// Package pagination selects a window of a listing and the order it is
// sorted in.
//
// The sort column is stored as an index into the entity's whitelist of
// sortable columns, so the text placed in the ORDER BY clause always comes
// from the table declaration and never from the caller.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/roach88/shelby/internal/store"
)

const (
	// DefaultLimit is the page size used when none is given.
	DefaultLimit = 10

	// MaximumLimit caps every page size.
	MaximumLimit = 100
)

var (
	// ErrInvalidColumn indicates a column that is not sortable for the entity.
	ErrInvalidColumn = errors.New("the selected column does not exist")

	// ErrInvalidOrder indicates an order other than asc or desc.
	ErrInvalidOrder = errors.New("order must be asc or desc")

	// ErrInvalidOffset indicates an offset that is not an integer.
	ErrInvalidOffset = errors.New("offset must be an integer")

	// ErrInvalidLimit indicates a limit that is not an integer.
	ErrInvalidLimit = errors.New("limit must be an integer")
)

// Order is the direction of a sort.
type Order int

const (
	// Descending is the default order.
	Descending Order = iota
	Ascending
)

// String returns the SQL keyword of the order.
func (o Order) String() string {
	if o == Ascending {
		return "ASC"
	}
	return "DESC"
}

// Param returns the query parameter form of the order.
func (o Order) Param() string {
	return strings.ToLower(o.String())
}

// ParseOrder accepts "asc" or "desc" in any case.
func ParseOrder(s string) (Order, error) {
	switch {
	case strings.EqualFold(s, "asc"):
		return Ascending, nil
	case strings.EqualFold(s, "desc"):
		return Descending, nil
	default:
		return Descending, fmt.Errorf("parse order %q: %w", s, ErrInvalidOrder)
	}
}

// LimitFrom clamps a requested page size to [0, MaximumLimit].
func LimitFrom(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaximumLimit {
		return MaximumLimit
	}
	return n
}

// Pagination is a window of a listing of E.
type Pagination[E store.Entity] struct {
	column int
	offset int
	limit  int
	order  Order
}

func sortable[E store.Entity]() []string {
	var entity E
	return entity.Table().SortableColumns()
}

// Default returns the first page: the first whitelisted column, offset 0,
// DefaultLimit rows, descending.
func Default[E store.Entity]() Pagination[E] {
	return Pagination[E]{limit: DefaultLimit, order: Descending}
}

// New validates column against E's whitelist. A negative offset is clamped
// to 0 and the limit to [0, MaximumLimit].
func New[E store.Entity](column string, offset, limit int, order Order) (Pagination[E], error) {
	index := -1
	for i, name := range sortable[E]() {
		if name == column {
			index = i
			break
		}
	}
	if index < 0 {
		return Pagination[E]{}, fmt.Errorf("paginate %s by %q: %w", store.KeyFrom[E](0).TableName(), column, ErrInvalidColumn)
	}

	if offset < 0 {
		offset = 0
	}

	return Pagination[E]{
		column: index,
		offset: offset,
		limit:  LimitFrom(limit),
		order:  order,
	}, nil
}

// Column returns the name of the sort column.
func (p Pagination[E]) Column() string {
	columns := sortable[E]()
	if len(columns) == 0 {
		return ""
	}
	return columns[p.column]
}

// Offset returns the index of the first row of the window.
func (p Pagination[E]) Offset() int { return p.offset }

// Limit returns the maximum number of rows of the window.
func (p Pagination[E]) Limit() int { return p.limit }

// Order returns the sort direction.
func (p Pagination[E]) Order() Order { return p.order }

// EndOffset returns the offset just past the window.
func (p Pagination[E]) EndOffset() int {
	return p.offset + p.limit
}

// SQL renders the clause appended to a select statement:
//
//	ORDER BY "<column>" <ASC|DESC> LIMIT <n> OFFSET <m>
func (p Pagination[E]) SQL() string {
	window := fmt.Sprintf("LIMIT %d OFFSET %d", p.limit, p.offset)
	column := p.Column()
	if column == "" {
		return window
	}
	return fmt.Sprintf("ORDER BY %q %s %s", column, p.order, window)
}

// String returns the SQL clause.
func (p Pagination[E]) String() string {
	return p.SQL()
}

// Next returns the following window. There is none when the current window
// came back short, since the listing is exhausted.
func (p Pagination[E]) Next(received int) (Pagination[E], bool) {
	if p.limit == 0 || received < p.limit {
		return p, false
	}
	next := p
	next.offset += p.limit
	return next, true
}

// Previous returns the preceding window, floored at offset 0.
func (p Pagination[E]) Previous() (Pagination[E], bool) {
	if p.offset == 0 {
		return p, false
	}
	prev := p
	prev.offset -= p.limit
	if prev.offset < 0 {
		prev.offset = 0
	}
	return prev, true
}

// Values encodes the window as query parameters.
func (p Pagination[E]) Values() url.Values {
	v := url.Values{}
	if column := p.Column(); column != "" {
		v.Set("column", column)
	}
	v.Set("offset", strconv.Itoa(p.offset))
	v.Set("limit", strconv.Itoa(p.limit))
	v.Set("order", p.order.Param())
	return v
}

// QueryString encodes the window as a URL query string.
func (p Pagination[E]) QueryString() string {
	return p.Values().Encode()
}

// FromValues reads column, offset, limit and order from query parameters.
// Missing parameters take their defaults.
func FromValues[E store.Entity](v url.Values) (Pagination[E], error) {
	p := Default[E]()

	offset := 0
	if s := v.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("parse offset %q: %w", s, ErrInvalidOffset)
		}
		offset = n
	}

	limit := DefaultLimit
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return p, fmt.Errorf("parse limit %q: %w", s, ErrInvalidLimit)
		}
		limit = n
	}

	order := Descending
	if s := v.Get("order"); s != "" {
		o, err := ParseOrder(s)
		if err != nil {
			return p, err
		}
		order = o
	}

	column := v.Get("column")
	if column == "" {
		column = p.Column()
	}
	if column == "" {
		// Nothing is sortable; keep the window only.
		p.offset = max(offset, 0)
		p.limit = LimitFrom(limit)
		p.order = order
		return p, nil
	}

	return New[E](column, offset, limit, order)
}
