package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/store"
)

// openArchive opens an in-memory store migrated to the latest schema.
func openArchive(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.OpenInMemory(context.Background(), append(opts, store.WithMigrations(Migrations()))...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustDate(t *testing.T, s string) date.Date {
	t.Helper()
	d, err := date.Parse(s)
	require.NoError(t, err)
	return d
}

func insertPerson(t *testing.T, s *store.Store, name string) store.Key[Person] {
	t.Helper()
	key, err := store.Insert(context.Background(), s, Person{Name: name, Address: "Main Street 1"})
	require.NoError(t, err)
	return key
}

func insertUser(t *testing.T, s *store.Store, username, password string) store.Key[User] {
	t.Helper()
	hash, err := NewPasswordHashCost(password, bcrypt.MinCost)
	require.NoError(t, err)
	key, err := store.Insert(context.Background(), s, User{
		Username:     username,
		PasswordHash: hash,
		Active:       true,
		CreationDate: date.Today(),
	})
	require.NoError(t, err)
	return key
}

// insertDocument inserts a document with its own sender and clerk.
// Descriptions must be unique within a test.
func insertDocument(t *testing.T, s *store.Store, content []byte, description string) store.Key[Document] {
	t.Helper()
	person := insertPerson(t, s, "Sender "+description)
	user := insertUser(t, s, "clerk of "+description, "secret")
	key, err := store.Insert(context.Background(), s, Document{
		Content:     content,
		ProcessedBy: user,
		FromPerson:  person,
		ToPerson:    person,
		Received:    mustDate(t, "2023-05-01"),
		Processed:   mustDate(t, "2023-05-03"),
		Description: description,
	})
	require.NoError(t, err)
	return key
}
