package model

import (
	"context"
	"fmt"

	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/store"
)

// Memberships associates persons with groups. A person is a member of a
// group at most once.
var Memberships = store.NewTable(store.TableSpec{
	Name:      "memberships",
	DependsOn: store.Both(Persons, Groups),
	Columns: []store.Column{
		store.ForeignKey("person_id", Persons),
		store.ForeignKey("group_id", Groups),
		store.Date("updated").Null(),
		store.Text("comment").Null(),
	},
	PrimaryKey: []string{"person_id", "group_id"},
})

const (
	selectMembersStatement     = "SELECT person_id, group_id, updated, comment FROM memberships WHERE group_id = ?"
	selectMembershipsStatement = "SELECT person_id, group_id, updated, comment FROM memberships WHERE person_id = ?"
	deleteMembershipStatement  = "DELETE FROM memberships WHERE person_id = ? AND group_id = ?"
)

// Membership records that a person belongs to a group.
type Membership struct {
	Person  store.Key[Person] `json:"person_id"`
	Group   store.Key[Group]  `json:"group_id"`
	Updated *date.Date        `json:"updated,omitempty"`
	Comment *string           `json:"comment,omitempty"`
}

func (Membership) Table() *store.Table { return Memberships }

func (m Membership) Values() []any {
	return []any{m.Person, m.Group, m.Updated, m.Comment}
}

func (Membership) Decode(row store.Scanner) (Membership, error) {
	var m Membership
	err := row.Scan(&m.Person, &m.Group, &m.Updated, &m.Comment)
	return m, err
}

// Insert stores the membership. Inserting the same pair twice is a
// constraint violation.
func (m Membership) Insert(ctx context.Context, s *store.Store) error {
	if _, err := s.Exec(ctx, Memberships.InsertStatement(), m.Values()...); err != nil {
		return fmt.Errorf("insert membership of %s in %s: %w", m.Person, m.Group, err)
	}
	return nil
}

// RemoveMembership deletes the membership of person in group and returns
// the number of rows removed, 0 or 1.
func RemoveMembership(ctx context.Context, s *store.Store, person store.Key[Person], group store.Key[Group]) (int64, error) {
	res, err := s.Exec(ctx, deleteMembershipStatement, person, group)
	if err != nil {
		return 0, fmt.Errorf("remove membership of %s in %s: %w", person, group, err)
	}
	return res.RowsAffected, nil
}

// FindMembers returns every membership of a group.
func FindMembers(ctx context.Context, s *store.Store, group store.Key[Group]) ([]Membership, error) {
	members, err := store.QueryAll(ctx, s, selectMembersStatement, Membership{}.Decode, group)
	if err != nil {
		return nil, fmt.Errorf("find members of %s: %w", group, err)
	}
	return members, nil
}

// FindMemberships returns every membership of a person.
func FindMemberships(ctx context.Context, s *store.Store, person store.Key[Person]) ([]Membership, error) {
	memberships, err := store.QueryAll(ctx, s, selectMembershipsStatement, Membership{}.Decode, person)
	if err != nil {
		return nil, fmt.Errorf("find memberships of %s: %w", person, err)
	}
	return memberships, nil
}
