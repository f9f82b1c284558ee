package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/shelby/internal/money"
	"github.com/roach88/shelby/internal/store"
)

func TestLoadAccountSummaries(t *testing.T) {
	ctx := context.Background()
	s := openArchive(t)

	category, err := store.Insert(ctx, s, Category{Description: "Category 1"})
	require.NoError(t, err)
	evidence := insertDocument(t, s, nil, "receipt")

	var centers []store.Key[CostCenter]
	for _, name := range []string{"Cost Center 1", "Cost Center 2"} {
		key, err := store.Insert(ctx, s, CostCenter{Description: name})
		require.NoError(t, err)
		centers = append(centers, key)
	}
	var accounts []store.Key[Account]
	for _, name := range []string{"Account 1", "Account 2"} {
		key, err := store.Insert(ctx, s, Account{Code: 1, Category: category, Description: name})
		require.NoError(t, err)
		accounts = append(accounts, key)
	}

	book := func(center store.Key[CostCenter], account store.Key[Account], units int64) {
		_, err := store.Insert(ctx, s, Entry{
			Evidence:   evidence,
			Account:    account,
			CostCenter: center,
			Amount:     money.FromInt(units),
		})
		require.NoError(t, err)
	}
	book(centers[0], accounts[0], 100)
	book(centers[0], accounts[0], 200)
	book(centers[0], accounts[1], 140)
	book(centers[1], accounts[0], 50)
	book(centers[1], accounts[0], 80)
	book(centers[1], accounts[1], 300)

	summaries, err := LoadAccountSummaries(ctx, s)
	require.NoError(t, err)

	assert.Equal(t, []AccountSummary{
		{Account: "Account 1", CostCenter: "Cost Center 1", Category: "Category 1", Amount: money.FromInt(300)},
		{Account: "Account 2", CostCenter: "Cost Center 1", Category: "Category 1", Amount: money.FromInt(140)},
		{Account: "Account 1", CostCenter: "Cost Center 2", Category: "Category 1", Amount: money.FromInt(130)},
		{Account: "Account 2", CostCenter: "Cost Center 2", Category: "Category 1", Amount: money.FromInt(300)},
	}, summaries)
	assert.Equal(t, "870.00", Total(summaries).String())
}

func TestLoadAccountSummaries_NoEntries(t *testing.T) {
	s := openArchive(t)

	summaries, err := LoadAccountSummaries(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.True(t, Total(summaries).IsZero())
}
