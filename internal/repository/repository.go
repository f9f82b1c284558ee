// Package repository reads selectable entities back from the store.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/shelby/internal/pagination"
	"github.com/roach88/shelby/internal/store"
)

// Repository selects rows of E and decodes them into the output shape O.
type Repository[E store.Selectable[O], O any] struct {
	store   *store.Store
	table   *store.Table
	decode  store.DecodeFunc[O]
	timeout time.Duration
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithQueryTimeout bounds every query of the repository. Zero means no
// bound beyond the caller's context.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New creates a repository for E over s.
func New[E store.Selectable[O], O any](s *store.Store, opts ...Option) *Repository[E, O] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var entity E
	return &Repository[E, O]{
		store:   s,
		table:   entity.Table(),
		decode:  entity.Decode,
		timeout: o.timeout,
	}
}

func (r *Repository[E, O]) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout > 0 {
		return context.WithTimeout(ctx, r.timeout)
	}
	return ctx, func() {}
}

// SelectAll returns every row that decodes. Rows that fail to decode are
// handled according to the store's decode policy.
func (r *Repository[E, O]) SelectAll(ctx context.Context) ([]O, error) {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	values, err := store.QueryAll(ctx, r.store, r.table.SelectAllStatement(), r.decode)
	if err != nil {
		return nil, fmt.Errorf("select all %s: %w", r.table.Name(), err)
	}
	return values, nil
}

// SelectPage returns the rows inside the pagination window, in its order.
func (r *Repository[E, O]) SelectPage(ctx context.Context, p pagination.Pagination[E]) ([]O, error) {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	query := r.table.SelectAllStatement() + " " + p.SQL()
	values, err := store.QueryAll(ctx, r.store, query, r.decode)
	if err != nil {
		return nil, fmt.Errorf("select page of %s: %w", r.table.Name(), err)
	}
	return values, nil
}

// Select returns the row with the given key. A missing row is reported with
// an error matching store.IsNotFound.
func (r *Repository[E, O]) Select(ctx context.Context, key store.Key[E]) (O, error) {
	value, found, err := r.TrySelect(ctx, key.Int64())
	if err != nil {
		return value, err
	}
	if !found {
		return value, &store.Error{Code: store.ErrCodeNotFound, Op: "select " + key.String()}
	}
	return value, nil
}

// TrySelect looks a row up by raw id. A missing row is not an error.
func (r *Repository[E, O]) TrySelect(ctx context.Context, id int64) (O, bool, error) {
	var zero O
	if !r.table.Indexed() {
		return zero, false, fmt.Errorf("select %s: table has no id column", r.table.Name())
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	value, found, err := store.QueryOptional(ctx, r.store, r.table.SelectStatement(), r.decode, id)
	if err != nil {
		return zero, false, fmt.Errorf("select /%s/%d: %w", r.table.Name(), id, err)
	}
	return value, found, nil
}

// Count returns the number of rows in the table.
func (r *Repository[E, O]) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	n, err := store.QueryOne(ctx, r.store, r.table.CountStatement(), func(row store.Scanner) (int64, error) {
		var n int64
		err := row.Scan(&n)
		return n, err
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table.Name(), err)
	}
	return n, nil
}
