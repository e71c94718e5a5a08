package etcd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heattrack/sessionkit/store"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	assert.Equal(t, []string{"localhost:2379"}, cfg.Endpoints)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, "/sessionkit/", cfg.Prefix)
}

// 需要本地 etcd，不可用时跳过
func TestStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s, err := New(ctx, &Config{DialTimeout: time.Second, Prefix: "/sessionkit-test/", LeaseTTL: 60})
	if err != nil {
		t.Skipf("Skipping test (etcd not available): %v", err)
	}
	defer s.Close()

	require.NoError(t, s.Set(ctx, "token", []byte("a.b.c")))
	v, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", string(v))

	require.NoError(t, s.Delete(ctx, "token"))
	_, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
