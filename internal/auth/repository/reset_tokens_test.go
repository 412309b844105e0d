package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *ResetTokenRepository) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewResetTokenRepository(client, time.Hour)
}

func TestResetTokens_SingleUse(t *testing.T) {
	_, repo := setupRedis(t)
	ctx := context.Background()

	token, err := repo.Create(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	uid, err := repo.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = repo.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestResetTokens_Expire(t *testing.T) {
	mr, repo := setupRedis(t)
	ctx := context.Background()

	token, err := repo.Create(ctx, "u1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = repo.Consume(ctx, token)
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestResetTokens_NewTokenRevokesPrevious(t *testing.T) {
	_, repo := setupRedis(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "u1")
	require.NoError(t, err)
	second, err := repo.Create(ctx, "u1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = repo.Consume(ctx, first)
	assert.ErrorIs(t, err, ErrResetTokenNotFound)

	uid, err := repo.Consume(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}
