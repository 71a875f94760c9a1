package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "sub-1", "Production"))

	got, err := c.Get(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Production", got)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New[int]()
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "short", 1, 10*time.Millisecond))

	got, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	time.Sleep(20 * time.Millisecond)

	_, err = c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCacheUpdateTTL(t *testing.T) {
	c := New[int]()
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "k", 7, 10*time.Millisecond))
	require.NoError(t, c.UpdateTTL(ctx, "k", time.Minute))

	time.Sleep(20 * time.Millisecond)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 7, got)

	assert.ErrorIs(t, c.UpdateTTL(ctx, "missing", time.Minute), ErrNotFound)
}

func TestCacheGetAllSelect(t *testing.T) {
	c := New[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "sub-1", "a"))
	require.NoError(t, c.Set(ctx, "sub-2", "b"))
	require.NoError(t, c.Set(ctx, "other", "c"))

	all, err := c.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	subs, err := c.GetAll(ctx, func(key string) bool {
		return key == "sub-1" || key == "sub-2"
	})
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	assert.NotContains(t, subs, "other")
}

func TestCacheDelete(t *testing.T) {
	c := New[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
