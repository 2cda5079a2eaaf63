package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.Set(ctx, KeyCartState, []byte(`{"items":[]}`)))

	got, err := store.Get(ctx, KeyCartState)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"items":[]}`), got)
}

func TestMemStoreMissingKey(t *testing.T) {
	store := NewMemStore()

	_, err := store.Get(context.Background(), KeySessionUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.Set(ctx, KeySessionUser, []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, KeySessionUser))

	_, err := store.Get(ctx, KeySessionUser)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, KeySessionUser))
}

func TestMemStoreLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	require.NoError(t, store.Set(ctx, KeyCartState, []byte(`first`)))
	require.NoError(t, store.Set(ctx, KeyCartState, []byte(`second`)))

	got, err := store.Get(ctx, KeyCartState)
	require.NoError(t, err)
	assert.Equal(t, []byte(`second`), got)
}

func TestMemStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	value := []byte(`original`)
	require.NoError(t, store.Set(ctx, KeyCartState, value))
	value[0] = 'X'

	got, err := store.Get(ctx, KeyCartState)
	require.NoError(t, err)
	assert.Equal(t, []byte(`original`), got)
}
