package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/roach88/shelby/internal/fkcache"
	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/store"
)

// rowFields returns the JSON field names of a table's rows in column order.
func rowFields(table *store.Table) []string {
	var fields []string
	if table.Indexed() {
		fields = append(fields, "identifier")
	}
	for _, c := range table.Columns() {
		if !c.Streamed {
			fields = append(fields, c.Name)
		}
	}
	return fields
}

// loadLabels fills a cache with the labels of every table that table
// references. Each referenced table is read once.
func loadLabels(ctx context.Context, s *store.Store, table *store.Table) (*fkcache.Cache, error) {
	cache := fkcache.New(s)
	for _, c := range table.Columns() {
		if c.References == nil {
			continue
		}
		ref, ok := model.Lookup(c.References.Name())
		if !ok || ref.Describe == "" {
			continue
		}
		if err := cache.AddTable(ctx, ref.Table, ref.Describe); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

// rowText flattens a row into display strings. Foreign keys are replaced
// by their labels when the cache has one.
func rowText(table *store.Table, row any, labels *fkcache.Cache) (map[string]string, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("render %s row: %w", table.Name(), err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("render %s row: %w", table.Name(), err)
	}

	refs := make(map[string]*store.Table)
	for _, c := range table.Columns() {
		if c.References != nil {
			refs[c.Name] = c.References
		}
	}

	out := make(map[string]string, len(fields))
	for name, raw := range fields {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("render %s.%s: %w", table.Name(), name, err)
		}

		text := formatValue(v)
		if ref, ok := refs[name]; ok {
			text = labelOf(labels, ref, text)
		}
		out[name] = text
	}
	return out, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// labelOf maps a canonical key of ref to its label.
func labelOf(labels *fkcache.Cache, ref *store.Table, key string) string {
	if labels == nil {
		return key
	}
	id, err := strconv.ParseInt(key[strings.LastIndex(key, "/")+1:], 10, 64)
	if err != nil {
		return key
	}
	if label, ok := labels.Lookup(ref.Name(), id); ok {
		return label
	}
	return key
}

// writeRows prints rows as aligned columns under a header line.
func writeRows(w io.Writer, fields []string, rows []map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = strings.ToUpper(f)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = row[f]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// writeRecord prints one row as "field: value" lines.
func writeRecord(w io.Writer, fields []string, row map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, f := range fields {
		if _, ok := row[f]; !ok {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f, row[f])
	}
	return tw.Flush()
}

// presentFields drops fields no row carries, such as hidden password hashes.
func presentFields(fields []string, rows []map[string]string) []string {
	if len(rows) == 0 {
		return fields
	}
	var out []string
	for _, f := range fields {
		for _, row := range rows {
			if _, ok := row[f]; ok {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
