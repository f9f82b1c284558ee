package model

import (
	"context"
	"fmt"

	"github.com/roach88/shelby/internal/money"
	"github.com/roach88/shelby/internal/store"
)

const accountSummaryStatement = `SELECT SUM(amount), accounts.description, cost_centers.description, categories.description FROM entries
INNER JOIN cost_centers ON cost_centers.id = cost_center
INNER JOIN accounts ON accounts.id = account
INNER JOIN categories ON categories.id = accounts.category
GROUP BY account, cost_center ORDER BY cost_center, categories.id, account`

// AccountSummary is the balance of one account within one cost center.
type AccountSummary struct {
	Account    string       `json:"account"`
	CostCenter string       `json:"cost_center"`
	Category   string       `json:"category"`
	Amount     money.Amount `json:"amount"`
}

func decodeAccountSummary(row store.Scanner) (AccountSummary, error) {
	var s AccountSummary
	err := row.Scan(&s.Amount, &s.Account, &s.CostCenter, &s.Category)
	return s, err
}

// LoadAccountSummaries sums every entry per account and cost center,
// ordered by cost center, then category, then account.
func LoadAccountSummaries(ctx context.Context, s *store.Store) ([]AccountSummary, error) {
	summaries, err := store.QueryAll(ctx, s, accountSummaryStatement, decodeAccountSummary)
	if err != nil {
		return nil, fmt.Errorf("load account summaries: %w", err)
	}
	return summaries, nil
}

// Total sums the amounts of summaries.
func Total(summaries []AccountSummary) money.Amount {
	var total money.Amount
	for _, s := range summaries {
		total = total.Add(s.Amount)
	}
	return total
}
