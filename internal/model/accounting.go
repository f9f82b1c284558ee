package model

import (
	"github.com/roach88/shelby/internal/money"
	"github.com/roach88/shelby/internal/store"
)

// Categories groups accounts, e.g. "Income" or "Travel".
var Categories = store.NewTable(store.TableSpec{
	Name:    "categories",
	Columns: []store.Column{store.Text("description")},
})

// Category is a group of accounts.
type Category struct {
	Description string `json:"description"`
}

func (Category) Table() *store.Table { return Categories }

func (c Category) Values() []any { return []any{c.Description} }

func (Category) Decode(row store.Scanner) (store.Record[Category], error) {
	var r store.Record[Category]
	err := row.Scan(&r.Key, &r.Value.Description)
	return r, err
}

func (Category) DescribeStatement() string { return store.DescribeBy(Categories, "description") }

// CostCenters stores the cost centers entries are booked against.
var CostCenters = store.NewTable(store.TableSpec{
	Name:    "cost_centers",
	Columns: []store.Column{store.Text("description")},
})

// CostCenter is a unit costs are attributed to.
type CostCenter struct {
	Description string `json:"description"`
}

func (CostCenter) Table() *store.Table { return CostCenters }

func (c CostCenter) Values() []any { return []any{c.Description} }

func (CostCenter) Decode(row store.Scanner) (store.Record[CostCenter], error) {
	var r store.Record[CostCenter]
	err := row.Scan(&r.Key, &r.Value.Description)
	return r, err
}

func (CostCenter) DescribeStatement() string { return store.DescribeBy(CostCenters, "description") }

// Accounts stores the chart of accounts.
var Accounts = store.NewTable(store.TableSpec{
	Name:      "accounts",
	DependsOn: Categories,
	Columns: []store.Column{
		store.Integer("code"),
		store.ForeignKey("category", Categories),
		store.Text("description"),
	},
})

// Account is a numbered ledger account.
type Account struct {
	Code        int32               `json:"code"`
	Category    store.Key[Category] `json:"category"`
	Description string              `json:"description"`
}

func (Account) Table() *store.Table { return Accounts }

func (a Account) Values() []any { return []any{a.Code, a.Category, a.Description} }

func (Account) Decode(row store.Scanner) (store.Record[Account], error) {
	var r store.Record[Account]
	err := row.Scan(&r.Key, &r.Value.Code, &r.Value.Category, &r.Value.Description)
	return r, err
}

func (Account) DescribeStatement() string {
	return store.DescribeBy(Accounts, "code || ' ' || description")
}

// Entries stores the bookings. Every entry is backed by a document.
var Entries = store.NewTable(store.TableSpec{
	Name:      "entries",
	DependsOn: store.All(Documents, Accounts, CostCenters),
	Columns: []store.Column{
		store.ForeignKey("evidence", Documents),
		store.ForeignKey("account", Accounts),
		store.ForeignKey("cost_center", CostCenters),
		store.Money("amount"),
		store.Text("description"),
	},
})

// Entry books an amount on an account and cost center.
type Entry struct {
	Evidence    store.Key[Document]   `json:"evidence"`
	Account     store.Key[Account]    `json:"account"`
	CostCenter  store.Key[CostCenter] `json:"cost_center"`
	Amount      money.Amount          `json:"amount"`
	Description string                `json:"description"`
}

func (Entry) Table() *store.Table { return Entries }

func (e Entry) Values() []any {
	return []any{e.Evidence, e.Account, e.CostCenter, e.Amount, e.Description}
}

func (Entry) Decode(row store.Scanner) (store.Record[Entry], error) {
	var r store.Record[Entry]
	err := row.Scan(&r.Key, &r.Value.Evidence, &r.Value.Account, &r.Value.CostCenter, &r.Value.Amount, &r.Value.Description)
	return r, err
}
