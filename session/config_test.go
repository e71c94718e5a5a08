package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, 1200*time.Second, c.InactivityTimeout)
	assert.Equal(t, 150*time.Second, c.TokenCheckInterval)
	assert.Equal(t, 300*time.Second, c.HeartbeatInterval)
	assert.Equal(t, 300*time.Second, c.RefreshThreshold)
	assert.Equal(t, 0.75, c.HeartbeatInactivityRatio)
	assert.Equal(t, 0.80, c.RefreshInactivityRatio)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	require.NoError(t, c.Validate())
}

func TestConfigDerivation(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		check     time.Duration
		heartbeat time.Duration
		threshold time.Duration
	}{
		{
			name:      "short timeout hits the floors",
			opts:      Options{InactivityTimeoutSeconds: 60},
			check:     15 * time.Second,
			heartbeat: 30 * time.Second,
			threshold: 30 * time.Second,
		},
		{
			name:      "long timeout scales",
			opts:      Options{InactivityTimeoutSeconds: 3600},
			check:     450 * time.Second,
			heartbeat: 900 * time.Second,
			threshold: 900 * time.Second,
		},
		{
			name: "explicit values win",
			opts: Options{
				InactivityTimeoutSeconds: 1200,
				ActivityCheckIntervalMs:  5000,
				HeartbeatIntervalMs:      10000,
				RefreshThresholdMs:       150000,
			},
			check:     5 * time.Second,
			heartbeat: 10 * time.Second,
			threshold: 150 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.opts.Config()
			assert.Equal(t, tt.check, c.TokenCheckInterval)
			assert.Equal(t, tt.heartbeat, c.HeartbeatInterval)
			assert.Equal(t, tt.threshold, c.RefreshThreshold)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	c.HeartbeatInactivityRatio = 1.5
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = DefaultConfig()
	c.RequestTimeout = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)

	c = DefaultConfig()
	c.InactivityTimeout = -time.Second
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}

func TestIdleLimits(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 960*time.Second, c.refreshIdleLimit())
	assert.Equal(t, 840*time.Second, c.proactiveIdleLimit())
	assert.InDelta(t, 0.5, c.idleRatio(600*time.Second), 1e-9)
}
