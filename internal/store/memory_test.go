package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGetDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Put(ctx, "k", "v"))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "k"))
	assert.Equal(t, 0, m.Len())

	// Deleting a missing key is a no-op.
	require.NoError(t, m.Delete(ctx, "k"))
}

func TestMemoryRejectsUseAfterClose(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k", "v"))
	require.NoError(t, m.Close())

	// Every operation on a closed store fails loudly instead of panicking
	// (Put on a nil map) or silently succeeding (Get/Delete on a nil map).
	err := m.Put(ctx, "k", "v2")
	assert.ErrorIs(t, err, errMemoryClosed)

	_, _, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, errMemoryClosed)

	err = m.Delete(ctx, "k")
	assert.ErrorIs(t, err, errMemoryClosed)
}
