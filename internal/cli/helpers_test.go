package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/model"
	"github.com/roach88/shelby/internal/money"
	"github.com/roach88/shelby/internal/store"
)

// archive is a database file seeded with a small but complete data set.
type archive struct {
	path     string
	document store.Key[model.Document]
	scan     []byte
}

func seedArchive(t *testing.T) archive {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	s, err := store.Open(ctx, path, store.WithMigrations(model.Migrations()))
	require.NoError(t, err)
	defer s.Close()

	insert := func(e store.Insertable) int64 {
		t.Helper()
		res, err := s.Exec(ctx, e.Table().InsertStatement(), e.Values()...)
		require.NoError(t, err)
		return res.LastInsertID
	}

	ada := store.KeyFrom[model.Person](insert(model.Person{Name: "Ada Lovelace", Address: "St James's Square"}))
	bank := store.KeyFrom[model.Person](insert(model.Person{Name: "Bank", Address: "Threadneedle Street"}))

	hash, err := model.NewPasswordHashCost("pw", bcrypt.MinCost)
	require.NoError(t, err)
	clerk := store.KeyFrom[model.User](insert(model.User{
		Username:     "clerk",
		PasswordHash: hash,
		Active:       true,
		CreationDate: mustDate(t, "2023-01-02"),
		RelatedTo:    &ada,
	}))

	scan := []byte("%PDF-1.4 statement")
	doc := store.KeyFrom[model.Document](insert(model.Document{
		Content:     scan,
		ProcessedBy: clerk,
		FromPerson:  bank,
		ToPerson:    ada,
		Received:    mustDate(t, "2023-05-01"),
		Processed:   mustDate(t, "2023-05-03"),
		Description: "bank statement",
	}))

	category := store.KeyFrom[model.Category](insert(model.Category{Description: "Household"}))
	center := store.KeyFrom[model.CostCenter](insert(model.CostCenter{Description: "Home"}))
	account := store.KeyFrom[model.Account](insert(model.Account{Code: 4000, Category: category, Description: "Rent"}))
	for _, units := range []int64{700, 50} {
		insert(model.Entry{Evidence: doc, Account: account, CostCenter: center, Amount: money.FromInt(units), Description: "May"})
	}

	return archive{path: path, document: doc, scan: scan}
}

func mustDate(t *testing.T, s string) date.Date {
	t.Helper()
	d, err := date.Parse(s)
	require.NoError(t, err)
	return d
}

// run executes the root command with args and returns stdout and the error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCommand(t, NewRootCommand(), args...)
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
