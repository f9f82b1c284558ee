package model

import (
	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/store"
)

// Persons stores everyone the archive knows about.
var Persons = store.NewTable(store.TableSpec{
	Name: "persons",
	Columns: []store.Column{
		store.Text("name"),
		store.Text("address"),
		store.Text("email").Null(),
		store.Date("birthday").Null(),
		store.Text("comment").Null(),
	},
})

// Person is a natural or legal person.
type Person struct {
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	Email    *string    `json:"email,omitempty"`
	Birthday *date.Date `json:"birthday,omitempty"`
	Comment  *string    `json:"comment,omitempty"`
}

func (Person) Table() *store.Table { return Persons }

func (p Person) Values() []any {
	return []any{p.Name, p.Address, p.Email, p.Birthday, p.Comment}
}

func (Person) Decode(row store.Scanner) (store.Record[Person], error) {
	var r store.Record[Person]
	err := row.Scan(&r.Key, &r.Value.Name, &r.Value.Address, &r.Value.Email, &r.Value.Birthday, &r.Value.Comment)
	return r, err
}

func (Person) DescribeStatement() string { return store.DescribeBy(Persons, "name") }

// Groups stores the groups persons can be members of.
var Groups = store.NewTable(store.TableSpec{
	Name:    "groups",
	Columns: []store.Column{store.Text("description")},
})

// Group is a named set of persons.
type Group struct {
	Description string `json:"description"`
}

func (Group) Table() *store.Table { return Groups }

func (g Group) Values() []any { return []any{g.Description} }

func (Group) Decode(row store.Scanner) (store.Record[Group], error) {
	var r store.Record[Group]
	err := row.Scan(&r.Key, &r.Value.Description)
	return r, err
}

func (Group) DescribeStatement() string { return store.DescribeBy(Groups, "description") }
