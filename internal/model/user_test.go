package model

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/shelby/internal/date"
	"github.com/roach88/shelby/internal/repository"
	"github.com/roach88/shelby/internal/store"
)

func TestPasswordHash(t *testing.T) {
	hash, err := NewPasswordHashCost("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, hash.IsValid())
	assert.True(t, hash.Matches("correct horse"))
	assert.False(t, hash.Matches("battery staple"))

	var zero PasswordHash
	assert.False(t, zero.IsValid())
	assert.False(t, zero.Matches(""))
}

func TestSelectUserByName(t *testing.T) {
	ctx := context.Background()
	s := openArchive(t)

	key := insertUser(t, s, "clerk", "s3cret")

	rec, found, err := SelectUserByName(ctx, s, "clerk")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, key, rec.Key)
	assert.True(t, rec.Value.Active)
	assert.True(t, rec.Value.PasswordHash.Matches("s3cret"))
	assert.Nil(t, rec.Value.RelatedTo)

	_, found, err = SelectUserByName(ctx, s, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUser_DuplicateNameIsConstraintViolation(t *testing.T) {
	s := openArchive(t)
	insertUser(t, s, "clerk", "a")

	_, err := store.Insert(context.Background(), s, User{Username: "clerk", CreationDate: date.Today()})
	require.Error(t, err)
	assert.True(t, store.IsConstraintViolation(err), "got %v", err)
}

func TestUser_DanglingRelatedPersonIsConstraintViolation(t *testing.T) {
	s := openArchive(t)
	nobody := store.KeyFrom[Person](42)

	_, err := store.Insert(context.Background(), s, User{Username: "ghost", CreationDate: date.Today(), RelatedTo: &nobody})
	require.Error(t, err)
	assert.True(t, store.IsConstraintViolation(err))
}

func TestUser_ProfileHidesHash(t *testing.T) {
	ctx := context.Background()
	s := openArchive(t)

	person := insertPerson(t, s, "Alice")
	hash, err := NewPasswordHashCost("pw", bcrypt.MinCost)
	require.NoError(t, err)
	key, err := store.Insert(ctx, s, User{
		Username:     "alice",
		PasswordHash: hash,
		CreationDate: mustDate(t, "2021-01-15"),
		RelatedTo:    &person,
	})
	require.NoError(t, err)

	profile, err := repository.New[User, UserProfile](s).Select(ctx, key)
	require.NoError(t, err)

	data, err := json.Marshal(profile)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"identifier": "/users/1",
		"username": "alice",
		"active": false,
		"creation_date": "2021-01-15",
		"related_to": "/persons/1"
	}`, string(data))
}
