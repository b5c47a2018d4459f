package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	value := []byte("v1")
	require.NoError(t, store.Set(ctx, "a", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got), "stored value must not alias caller buffer")
}

func TestStore_WritesAndFailSet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	boom := errors.New("disk full")

	store.FailSet("b", boom)
	require.NoError(t, store.Set(ctx, "a", nil))
	assert.ErrorIs(t, store.Set(ctx, "b", nil), boom)

	store.FailSet("b", nil)
	require.NoError(t, store.Set(ctx, "b", nil))

	assert.Equal(t, []string{"a", "b"}, store.Writes())
}

func TestStore_FailGet(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	boom := errors.New("io error")
	require.NoError(t, store.Set(ctx, "a", []byte("v")))

	store.FailGet("a", boom)
	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, boom)

	store.FailGet("a", nil)
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}
