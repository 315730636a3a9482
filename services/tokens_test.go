package services

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseTokenStore checks the contract every store shares.
func exerciseTokenStore(t *testing.T, store TokenStore) {
	t.Helper()
	ctx := context.Background()
	const chatA, chatB int64 = 999999901, 999999902
	t.Cleanup(func() {
		_ = store.Clear(ctx, chatA)
		_ = store.Clear(ctx, chatB)
	})

	tok, err := store.Get(ctx, chatA)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Set(ctx, chatA, "tok-a"))
	require.NoError(t, store.Set(ctx, chatB, "tok-b"))
	require.NoError(t, store.Set(ctx, chatA, "tok-a2"))

	tok, err = store.Get(ctx, chatA)
	require.NoError(t, err)
	assert.Equal(t, "tok-a2", tok)

	require.NoError(t, store.Clear(ctx, chatA))
	tok, err = store.Get(ctx, chatA)
	require.NoError(t, err)
	assert.Empty(t, tok)

	tok, err = store.Get(ctx, chatB)
	require.NoError(t, err)
	assert.Equal(t, "tok-b", tok)

	require.NoError(t, store.Set(ctx, chatB, ""))
	tok, err = store.Get(ctx, chatB)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Clear(ctx, chatA))
}

func TestMemoryTokenStore(t *testing.T) {
	exerciseTokenStore(t, NewMemoryTokenStore())
}

func TestRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisTokenStore(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer store.Close()

	exerciseTokenStore(t, store)

	require.NoError(t, store.Set(context.Background(), 5, "abc"))
	got, err := mr.Get("menuToken:5")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
	assert.Zero(t, mr.TTL("menuToken:5"))
}

func TestRedisTokenStore_BadURL(t *testing.T) {
	_, err := NewRedisTokenStore(context.Background(), "not a url")
	assert.Error(t, err)
}

// Integration test; skipped unless DATABASE_URL points at a scratch database.
func TestPostgresTokenStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("skipping postgres integration test: DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	defer pool.Close()

	store := NewPostgresTokenStore(pool)
	require.NoError(t, store.EnsureSessionTokensTable(context.Background()))
	exerciseTokenStore(t, store)
}
