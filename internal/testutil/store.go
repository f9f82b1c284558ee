package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/shelby/internal/store"
)

// OpenStore opens a private in-memory store, creates the given tables with
// their dependencies, and closes the store when the test ends.
func OpenStore(t *testing.T, tables []store.Dependency, opts ...store.Option) *store.Store {
	t.Helper()

	s, err := store.OpenPlain(context.Background(), opts...)
	require.NoError(t, err, "open in-memory store")
	t.Cleanup(func() { s.Close() })

	require.NoError(t, store.CreateTables(context.Background(), s, tables...), "create tables")
	return s
}

// OpenRecordedStore is OpenStore with a StatementRecorder attached. The
// recorder is reset after the tables are created.
func OpenRecordedStore(t *testing.T, tables []store.Dependency, opts ...store.Option) (*store.Store, *StatementRecorder) {
	t.Helper()

	rec := NewStatementRecorder()
	s := OpenStore(t, tables, append(opts, store.WithTracer(rec.Record))...)
	rec.Reset()
	return s, rec
}

// Tables is shorthand for building the table list of OpenStore.
func Tables(tables ...*store.Table) []store.Dependency {
	deps := make([]store.Dependency, len(tables))
	for i, table := range tables {
		deps[i] = table
	}
	return deps
}
