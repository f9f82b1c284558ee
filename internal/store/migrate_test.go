package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func libraryMigrations() []Migration {
	return []Migration{
		{
			Name: "authors",
			Up:   CreateScript(testAuthors),
			Down: DropScript(testAuthors),
		},
		{
			Name: "books and shelves",
			Up:   CreateScript(testBooks, testShelves, testPlacements),
			Down: DropScript(testBooks, testShelves, testPlacements),
		},
	}
}

func TestOpen_AppliesMigrations(t *testing.T) {
	s, _ := openFileStore(t, WithMigrations(libraryMigrations()))

	version, err := s.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
	assert.Equal(t, []string{"authors", "books", "shelves", "placements"}, tableNames(t, s))
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(ctx, path, WithMigrations(libraryMigrations()))
		require.NoError(t, err, "open iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(ctx, path, WithMigrations(libraryMigrations()))
	require.NoError(t, err)
	defer s.Close()

	version, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestOpen_AppliesOnlyPendingBundles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(ctx, path, WithMigrations(libraryMigrations()[:1]))
	require.NoError(t, err)
	_, err = Insert(ctx, s1, author{Name: "Ursula"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, path, WithMigrations(libraryMigrations()))
	require.NoError(t, err)
	defer s2.Close()

	version, err := s2.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, version)

	// The first bundle was not replayed over the existing data.
	n, err := QueryOne(ctx, s2, testAuthors.CountStatement(), scanInt64)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpen_FailingMigrationFailsOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	broken := []Migration{{Name: "broken", Up: "CREATE TABLE ("}}

	_, err := Open(context.Background(), path, WithMigrations(broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestMigrateDown(t *testing.T) {
	ctx := context.Background()
	s, _ := openFileStore(t, WithMigrations(libraryMigrations()))

	require.NoError(t, s.MigrateDown(ctx, 1))
	version, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, []string{"authors"}, tableNames(t, s))

	require.NoError(t, s.MigrateDown(ctx, 0))
	version, err = s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	assert.Empty(t, tableNames(t, s))

	// Migrating forward again restores the schema.
	require.NoError(t, s.Migrate(ctx))
	assert.Equal(t, []string{"authors", "books", "shelves", "placements"}, tableNames(t, s))
}

func TestMigrateDown_InvalidTarget(t *testing.T) {
	s, _ := openFileStore(t, WithMigrations(libraryMigrations()))

	assert.Error(t, s.MigrateDown(context.Background(), -1))
}
