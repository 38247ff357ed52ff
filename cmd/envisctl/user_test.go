package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envis/envis/internal/auth"
	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/repository"
)

type stubUsers map[string]*model.User

func (s stubUsers) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := s[username]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func TestReadPassword(t *testing.T) {
	got, err := readPassword(strings.NewReader("s3cret-pass\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", got)

	got, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, validateCredentials("alice", "long-enough"))
	assert.EqualError(t, validateCredentials("", "long-enough"), "username is required")
	assert.EqualError(t, validateCredentials("alice", "short"), "password must be at least 8 characters")
}

func TestCreateUserRejectsBadInputBeforeConnecting(t *testing.T) {
	cmd := createUserCmd()
	cmd.SetArgs([]string{"alice", "--password", "short"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8")
}

func TestCheckUserPassword(t *testing.T) {
	hash, err := auth.HashPassword("long-enough")
	require.NoError(t, err)
	users := stubUsers{
		"alice":   {ID: "u1", Username: "alice", PasswordHash: hash},
		"mallory": {ID: "u2", Username: "mallory", PasswordHash: "not-a-hash"},
	}
	ctx := context.Background()

	assert.NoError(t, checkUserPassword(ctx, users, "alice", "long-enough"))
	assert.ErrorIs(t, checkUserPassword(ctx, users, "alice", "wrong-password"), errBadCredentials)
	assert.ErrorIs(t, checkUserPassword(ctx, users, "bob", "long-enough"), errBadCredentials)
	assert.ErrorIs(t, checkUserPassword(ctx, users, "mallory", "long-enough"), auth.ErrInvalidHash)
}

func TestCheckUserPasswordLookupFailure(t *testing.T) {
	err := checkUserPassword(context.Background(), failingUsers{}, "alice", "long-enough")
	assert.EqualError(t, err, "connection refused")
}

type failingUsers struct{}

func (failingUsers) GetUserByUsername(context.Context, string) (*model.User, error) {
	return nil, errors.New("connection refused")
}
