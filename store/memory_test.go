package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, "token", []byte("a.b.c")))
	v, err := m.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", string(v))

	// 返回值是副本
	v[0] = 'x'
	v, _ = m.Get(ctx, "token")
	assert.Equal(t, "a.b.c", string(v))

	require.NoError(t, m.Delete(ctx, "token"))
	require.NoError(t, m.Delete(ctx, "token"))
	assert.Zero(t, m.Len())
}

func TestCloseWithoutCloser(t *testing.T) {
	assert.NoError(t, Close(NewMemory()))
}
