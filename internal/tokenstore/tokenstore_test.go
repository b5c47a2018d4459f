package tokenstore_test

import (
	"context"
	"testing"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage"
	"github.com/bcnelson/netguard/internal/storage/memory"
	"github.com/bcnelson/netguard/internal/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) *[32]byte {
	var k [32]byte
	for i := range k {
		k[i] = b
	}
	return &k
}

func TestSealed_StoreAndFetch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ts := tokenstore.New(store, key(1))

	require.NoError(t, ts.StoreToken(ctx, "tok-123"))

	raw, err := store.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok-123")

	got, err := ts.FetchToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)
}

func TestSealed_FetchMissing(t *testing.T) {
	ts := tokenstore.New(memory.New(), key(1))

	_, err := ts.FetchToken(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	token, err := tokenstore.FetchOptional(context.Background(), ts)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSealed_WrongKeyIsCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, tokenstore.New(store, key(1)).StoreToken(ctx, "tok"))

	_, err := tokenstore.New(store, key(2)).FetchToken(ctx)
	assert.ErrorIs(t, err, domain.ErrTokenCorrupt)
}

func TestSealed_TruncatedIsCorrupt(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Set(ctx, storage.KeyAuthToken, []byte("short")))

	_, err := tokenstore.New(store, key(1)).FetchToken(ctx)
	assert.ErrorIs(t, err, domain.ErrTokenCorrupt)
}

func TestSealed_Delete(t *testing.T) {
	ctx := context.Background()
	ts := tokenstore.New(memory.New(), key(1))

	require.NoError(t, ts.StoreToken(ctx, "tok"))
	require.NoError(t, ts.DeleteToken(ctx))

	_, err := ts.FetchToken(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
