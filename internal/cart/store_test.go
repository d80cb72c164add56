package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	empty, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", empty.SessionID)
	assert.Empty(t, empty.Items)

	require.NoError(t, store.Add(ctx, "s1", item("mug", "9.99", 1)))
	require.NoError(t, store.AddBatch(ctx, "s1", bundleLines("b1")))

	bad := bundleLines("b2")
	bad[1].Quantity = 0
	assert.ErrorIs(t, store.AddBatch(ctx, "s1", bad), ErrInvalidItem)

	c, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 4)

	c.Items[0].Quantity = 99
	again, _ := store.Get(ctx, "s1")
	assert.Equal(t, 1, again.Items[0].Quantity)

	assert.ErrorIs(t, store.Remove(ctx, "s1", "nope"), ErrItemNotFound)
	assert.ErrorIs(t, store.UpdateQuantity(ctx, "s1", "nope", 2), ErrItemNotFound)
	require.NoError(t, store.UpdateQuantity(ctx, "s1", "mug", 3))
	require.NoError(t, store.RemoveBundle(ctx, "s1", "b1"))
	assert.ErrorIs(t, store.RemoveBundle(ctx, "s1", "b1"), ErrItemNotFound)

	c, _ = store.Get(ctx, "s1")
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.TotalItems())

	other, _ := store.Get(ctx, "s2")
	assert.Empty(t, other.Items)

	require.NoError(t, store.Clear(ctx, "s1"))
	c, _ = store.Get(ctx, "s1")
	assert.Empty(t, c.Items)
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, NewMemoryStore().Add(ctx, "s1", item("mug", "9.99", 1)), context.Canceled)
}
