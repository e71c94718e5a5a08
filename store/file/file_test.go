package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heattrack/sessionkit/store"
)

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := New(path)
	require.NoError(t, err)

	_, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Set(ctx, "token", []byte("a.b.c")))
	require.NoError(t, s.Set(ctx, "user", []byte(`{"username":"op1"}`)))

	reopened, err := New(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"op1"}`, string(v))

	require.NoError(t, reopened.Delete(ctx, "token"))
	require.NoError(t, reopened.Delete(ctx, "token"))
	_, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := New(path)
	require.NoError(t, err)

	_, err = s.Get(context.Background(), "token")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}
