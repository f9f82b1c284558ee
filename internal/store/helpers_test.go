package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// A small library schema: authors <- books <- placements -> shelves.

var (
	testAuthors = NewTable(TableSpec{
		Name: "authors",
		Columns: []Column{
			Text("name"),
			Text("nickname").Null(),
		},
	})

	testShelves = NewTable(TableSpec{
		Name:    "shelves",
		Columns: []Column{Text("label")},
	})

	testBooks = NewTable(TableSpec{
		Name:      "books",
		DependsOn: testAuthors,
		Columns: []Column{
			Text("title"),
			ForeignKey("author", testAuthors),
			Integer("pages"),
			Blob("scan").Stream(),
		},
	})

	testPlacements = NewTable(TableSpec{
		Name:      "placements",
		DependsOn: Both(testBooks, testShelves),
		Columns: []Column{
			ForeignKey("book", testBooks),
			ForeignKey("shelf", testShelves),
			Bool("facing_out"),
		},
		PrimaryKey: []string{"book", "shelf"},
	})
)

type author struct {
	Name     string  `json:"name"`
	Nickname *string `json:"nickname,omitempty"`
}

func (author) Table() *Table { return testAuthors }

func (a author) Values() []any { return []any{a.Name, a.Nickname} }

func (author) Decode(row Scanner) (Record[author], error) {
	var r Record[author]
	err := row.Scan(&r.Key, &r.Value.Name, &r.Value.Nickname)
	return r, err
}

func (author) DescribeStatement() string { return DescribeBy(testAuthors, "name") }

type book struct {
	Title  string      `json:"title"`
	Author Key[author] `json:"author"`
	Pages  int         `json:"pages"`
	Scan   []byte      `json:"-"`
}

func (book) Table() *Table { return testBooks }

func (b book) Values() []any { return []any{b.Title, b.Author, b.Pages, b.Scan} }

func (book) Decode(row Scanner) (Record[book], error) {
	var r Record[book]
	err := row.Scan(&r.Key, &r.Value.Title, &r.Value.Author, &r.Value.Pages)
	return r, err
}

type shelf struct {
	Label string `json:"label"`
}

func (shelf) Table() *Table { return testShelves }

func (s shelf) Values() []any { return []any{s.Label} }

type placement struct {
	Book      Key[book]
	Shelf     Key[shelf]
	FacingOut bool
}

func (placement) Table() *Table { return testPlacements }

func (p placement) Values() []any { return []any{p.Book, p.Shelf, p.FacingOut} }

// openTestStore opens a fresh database with no tables.
func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := OpenPlain(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// openFileStore opens a file-backed database in a temporary directory.
func openFileStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

// openLibrary opens a store with the whole library schema created.
func openLibrary(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := openTestStore(t, opts...)
	require.NoError(t, CreateTable(context.Background(), s, placement{}))
	return s
}

// statementLog records every statement passed to a tracer.
type statementLog struct {
	mu         sync.Mutex
	statements []string
}

func (l *statementLog) record(statement string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statements = append(l.statements, statement)
}

func (l *statementLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.statements...)
}

func tableNames(t *testing.T, s *Store) []string {
	t.Helper()
	names, err := QueryAll(context.Background(), s,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY rowid",
		func(row Scanner) (string, error) {
			var name string
			err := row.Scan(&name)
			return name, err
		})
	require.NoError(t, err)
	return names
}
