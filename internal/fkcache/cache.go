// Package fkcache resolves foreign keys to human readable labels.
//
// A Cache lives for one render pass, typically one listing. For every
// referenced table it runs the table's describe statement once and keeps
// every (id, label) pair in memory; lookups never touch the database.
//
// A Cache is not safe for concurrent use.
package fkcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/shelby/internal/store"
)

// Option is one described row of a table, in the order the describe
// statement returned it.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type descriptions struct {
	labels map[int64]string
	order  []int64
}

// Cache holds the labels of every table added during one pass.
type Cache struct {
	store  *store.Store
	pass   uuid.UUID
	logger *slog.Logger
	tables map[string]*descriptions
}

// New creates an empty cache for one pass over s.
func New(s *store.Store) *Cache {
	pass := uuid.Must(uuid.NewV7())
	return &Cache{
		store:  s,
		pass:   pass,
		logger: s.Logger().With("pass", pass.String()),
		tables: make(map[string]*descriptions),
	}
}

// PassID identifies the pass in log records.
func (c *Cache) PassID() uuid.UUID {
	return c.pass
}

// Add loads the labels of E's table. A table that is already loaded is not
// queried again.
func Add[E store.Referenceable](ctx context.Context, c *Cache) error {
	var entity E
	return c.AddTable(ctx, entity.Table(), entity.DescribeStatement())
}

// AddTable loads the labels of a table from its describe statement, which
// must select (id, label). A table that is already loaded is not queried
// again.
func (c *Cache) AddTable(ctx context.Context, table *store.Table, describe string) error {
	name := table.Name()
	if _, ok := c.tables[name]; ok {
		return nil
	}

	type row struct {
		id    int64
		label string
	}
	rows, err := store.QueryAll(ctx, c.store, describe, func(s store.Scanner) (row, error) {
		var r row
		var label sql.NullString
		if err := s.Scan(&r.id, &label); err != nil {
			return r, err
		}
		r.label = norm.NFC.String(label.String)
		return r, nil
	})
	if err != nil {
		return fmt.Errorf("describe %s: %w", name, err)
	}

	d := &descriptions{
		labels: make(map[int64]string, len(rows)),
		order:  make([]int64, 0, len(rows)),
	}
	for _, r := range rows {
		if _, dup := d.labels[r.id]; !dup {
			d.order = append(d.order, r.id)
		}
		d.labels[r.id] = r.label
	}
	c.tables[name] = d

	c.logger.Debug("foreign keys loaded", "table", name, "rows", len(d.order))
	return nil
}

// Loaded reports whether a table has been added.
func (c *Cache) Loaded(table string) bool {
	_, ok := c.tables[table]
	return ok
}

// Get returns the label of key. It reports false when E's table was never
// added or the id is unknown; it never queries the database.
func Get[E store.Referenceable](c *Cache, key store.Key[E]) (string, bool) {
	return c.Lookup(key.TableName(), key.Int64())
}

// Label returns the label of key, or the key's canonical form when there is
// none.
func Label[E store.Referenceable](c *Cache, key store.Key[E]) string {
	if label, ok := Get(c, key); ok {
		return label
	}
	return key.String()
}

// Lookup is Get by table name and raw id.
func (c *Cache) Lookup(table string, id int64) (string, bool) {
	d, ok := c.tables[table]
	if !ok {
		return "", false
	}
	label, ok := d.labels[id]
	return label, ok
}

// Options returns the described rows of a table in query order, keyed by
// their canonical "/<table>/<id>" form. It is nil for a table that was never
// added.
func (c *Cache) Options(table string) []Option {
	d, ok := c.tables[table]
	if !ok {
		return nil
	}
	options := make([]Option, len(d.order))
	for i, id := range d.order {
		options[i] = Option{Key: canonicalKey(table, id), Label: d.labels[id]}
	}
	return options
}

// Snapshot returns every loaded label, by table and canonical key.
func (c *Cache) Snapshot() map[string]map[string]string {
	snapshot := make(map[string]map[string]string, len(c.tables))
	for table, d := range c.tables {
		labels := make(map[string]string, len(d.labels))
		for id, label := range d.labels {
			labels[canonicalKey(table, id)] = label
		}
		snapshot[table] = labels
	}
	return snapshot
}

// MarshalJSON serialises the snapshot.
func (c *Cache) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Snapshot())
}

func canonicalKey(table string, id int64) string {
	return "/" + table + "/" + strconv.FormatInt(id, 10)
}
