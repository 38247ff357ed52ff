//go:build integration

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envis/envis/internal/model"
	"github.com/envis/envis/internal/testutil"
)

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t, "000001_users")

	user := &model.User{
		ID:           testutil.UniqueID("user"),
		Username:     testutil.UniqueID("admin"),
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	}
	require.NoError(t, repo.CreateUser(ctx, user))

	got, err := repo.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())

	dup := *user
	dup.ID = testutil.UniqueID("user2")
	assert.ErrorIs(t, repo.CreateUser(ctx, &dup), ErrUsernameExists)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
