package model

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/store"
)

// Users stores the accounts that process documents. User names are unique.
var Users = store.NewTable(store.TableSpec{
	Name:      "users",
	DependsOn: Persons,
	Columns: []store.Column{
		store.Text("username"),
		store.Blob("password_hash"),
		store.Bool("active"),
		store.Date("creation_date"),
		store.ForeignKey("related_to", Persons).Null(),
	},
	Constraints: "UNIQUE(username)",
})

var selectUserByNameStatement = Users.SelectAllStatement() + " WHERE username = ?"

// User is an account. The password is only ever stored as a hash.
type User struct {
	Username     string             `json:"username"`
	PasswordHash PasswordHash       `json:"-"`
	Active       bool               `json:"active"`
	CreationDate date.Date          `json:"creation_date"`
	RelatedTo    *store.Key[Person] `json:"related_to,omitempty"`
}

// UserProfile is the public view of a user, without the password hash.
type UserProfile struct {
	Key          store.Key[User]    `json:"identifier"`
	Username     string             `json:"username"`
	Active       bool               `json:"active"`
	CreationDate date.Date          `json:"creation_date"`
	RelatedTo    *store.Key[Person] `json:"related_to,omitempty"`
}

func (User) Table() *store.Table { return Users }

func (u User) Values() []any {
	return []any{u.Username, u.PasswordHash, u.Active, u.CreationDate, u.RelatedTo}
}

func decodeUser(row store.Scanner) (store.Record[User], error) {
	var r store.Record[User]
	err := row.Scan(&r.Key, &r.Value.Username, &r.Value.PasswordHash, &r.Value.Active, &r.Value.CreationDate, &r.Value.RelatedTo)
	return r, err
}

func (User) Decode(row store.Scanner) (UserProfile, error) {
	r, err := decodeUser(row)
	if err != nil {
		return UserProfile{}, err
	}
	return r.Value.Profile(r.Key), nil
}

func (User) DescribeStatement() string { return store.DescribeBy(Users, "username") }

// Profile returns the public view of the user stored under key.
func (u User) Profile(key store.Key[User]) UserProfile {
	return UserProfile{
		Key:          key,
		Username:     u.Username,
		Active:       u.Active,
		CreationDate: u.CreationDate,
		RelatedTo:    u.RelatedTo,
	}
}

// SelectUserByName looks a user up by name, including the password hash.
func SelectUserByName(ctx context.Context, s *store.Store, username string) (store.Record[User], bool, error) {
	r, found, err := store.QueryOptional(ctx, s, selectUserByNameStatement, decodeUser, username)
	if err != nil {
		return r, false, fmt.Errorf("select user %q: %w", username, err)
	}
	return r, found, nil
}

// PasswordHash is a bcrypt hash of a password. The zero value is an invalid
// hash that matches no password.
type PasswordHash struct {
	hash []byte
}

// NewPasswordHash hashes password with the default bcrypt cost.
func NewPasswordHash(password string) (PasswordHash, error) {
	return NewPasswordHashCost(password, bcrypt.DefaultCost)
}

// NewPasswordHashCost hashes password with the given bcrypt cost.
func NewPasswordHashCost(password string, cost int) (PasswordHash, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return PasswordHash{}, fmt.Errorf("hash password: %w", err)
	}
	return PasswordHash{hash: hash}, nil
}

// IsValid reports whether the hash can match any password.
func (h PasswordHash) IsValid() bool {
	return len(h.hash) > 0
}

// Matches reports whether password is the one that was hashed.
func (h PasswordHash) Matches(password string) bool {
	if !h.IsValid() {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.hash, []byte(password)) == nil
}

// Value implements driver.Valuer. An invalid hash is stored as an empty blob.
func (h PasswordHash) Value() (driver.Value, error) {
	if h.hash == nil {
		return []byte{}, nil
	}
	return h.hash, nil
}

// Scan implements sql.Scanner.
func (h *PasswordHash) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		h.hash = append([]byte(nil), v...)
		return nil
	case nil:
		h.hash = nil
		return nil
	default:
		return errors.New("scan password hash: not a blob")
	}
}
