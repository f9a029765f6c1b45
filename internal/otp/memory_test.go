package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConsumeOnce(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "jane@murdoch.edu.au", "0042"))

	ok, err := store.Consume(ctx, "jane@murdoch.edu.au", "0042")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, "jane@murdoch.edu.au", "0042")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreMismatchKeepsCode(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "jane@murdoch.edu.au", "0042"))

	ok, err := store.Consume(ctx, "jane@murdoch.edu.au", "42")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "jane@murdoch.edu.au", "0042")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStorePutOverwrites(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "jane@murdoch.edu.au", "1111"))
	require.NoError(t, store.Put(ctx, "jane@murdoch.edu.au", "2222"))

	ok, err := store.Consume(ctx, "jane@murdoch.edu.au", "1111")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "jane@murdoch.edu.au", "2222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	current := time.Date(2026, time.March, 18, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Put(ctx, "jane@murdoch.edu.au", "0042"))

	current = current.Add(5*time.Minute + time.Second)
	ok, err := store.Consume(ctx, "jane@murdoch.edu.au", "0042")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDistinctEmails(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a@murdoch.edu.au", "1111"))
	require.NoError(t, store.Put(ctx, "b@murdoch.edu.au", "2222"))

	ok, err := store.Consume(ctx, "a@murdoch.edu.au", "2222")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Consume(ctx, "a@murdoch.edu.au", "1111")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, "b@murdoch.edu.au", "2222")
	require.NoError(t, err)
	assert.True(t, ok)
}
