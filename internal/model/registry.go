package model

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/roach88/shelby/internal/pagination"
	"github.com/roach88/shelby/internal/repository"
	"github.com/roach88/shelby/internal/store"
)

// ErrUnknownTable indicates a table name no listing is registered for.
var ErrUnknownTable = errors.New("unknown table")

// Listing gives untyped access to one selectable entity. It is what the
// command line uses to list or show rows of a table named at runtime.
type Listing struct {
	// Table is the entity's table.
	Table *store.Table

	// Describe is the entity's describe statement, empty when rows of the
	// table have no label.
	Describe string

	list  func(ctx context.Context, s *store.Store, params url.Values, opts []repository.Option) ([]any, error)
	show  func(ctx context.Context, s *store.Store, id int64, opts []repository.Option) (any, bool, error)
	parse func(key string) (int64, error)
}

// List returns one page of rows, selected by the column, offset, limit and
// order parameters.
func (l Listing) List(ctx context.Context, s *store.Store, params url.Values, opts ...repository.Option) ([]any, error) {
	return l.list(ctx, s, params, opts)
}

// Show returns the row with the given id. Tables without an id column
// cannot be shown.
func (l Listing) Show(ctx context.Context, s *store.Store, id int64, opts ...repository.Option) (any, bool, error) {
	return l.show(ctx, s, id, opts)
}

// ParseKey parses a key of this table, in either textual form.
func (l Listing) ParseKey(key string) (int64, error) {
	return l.parse(key)
}

func listing[E store.Selectable[O], O any]() Listing {
	var entity E
	l := Listing{
		Table: entity.Table(),
		list: func(ctx context.Context, s *store.Store, params url.Values, opts []repository.Option) ([]any, error) {
			p, err := pagination.FromValues[E](params)
			if err != nil {
				return nil, err
			}
			rows, err := repository.New[E, O](s, opts...).SelectPage(ctx, p)
			if err != nil {
				return nil, err
			}
			out := make([]any, len(rows))
			for i, row := range rows {
				out[i] = row
			}
			return out, nil
		},
		show: func(ctx context.Context, s *store.Store, id int64, opts []repository.Option) (any, bool, error) {
			return repository.New[E, O](s, opts...).TrySelect(ctx, id)
		},
		parse: func(key string) (int64, error) {
			k, err := store.ParseKey[E](key)
			return k.Int64(), err
		},
	}
	if ref, ok := any(entity).(store.Referenceable); ok {
		l.Describe = ref.DescribeStatement()
	}
	return l
}

var listings = map[string]Listing{}

func register(l Listing) {
	listings[l.Table.Name()] = l
}

func init() {
	register(listing[Person, store.Record[Person]]())
	register(listing[Group, store.Record[Group]]())
	register(listing[Membership, Membership]())
	register(listing[User, UserProfile]())
	register(listing[Document, DocumentMetadata]())
	register(listing[Category, store.Record[Category]]())
	register(listing[CostCenter, store.Record[CostCenter]]())
	register(listing[Account, store.Record[Account]]())
	register(listing[Entry, store.Record[Entry]]())
}

// Lookup returns the listing of a table.
func Lookup(table string) (Listing, bool) {
	l, ok := listings[table]
	return l, ok
}

// TableNames returns the names of every listable table, sorted.
func TableNames() []string {
	names := make([]string, 0, len(listings))
	for name := range listings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveKey finds the listing named by a canonical "/<table>/<id>" key and
// parses the id.
func ResolveKey(key string) (Listing, int64, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "" {
		return Listing{}, 0, fmt.Errorf("resolve key %q: %w", key, store.ErrKeyFormat)
	}
	l, ok := Lookup(parts[1])
	if !ok {
		return Listing{}, 0, fmt.Errorf("resolve key %q: %w %s", key, ErrUnknownTable, parts[1])
	}
	id, err := l.ParseKey(key)
	if err != nil {
		return Listing{}, 0, err
	}
	return l, id, nil
}
