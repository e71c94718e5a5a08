package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/heattrack/sessionkit/errors"
)

func TestHeartbeatSkippedWhenIdle(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	h := newHarness(t, WithMetrics(metrics))
	epoch := h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))

	// 996s / 1200s = 0.83
	h.clock.Advance(996 * time.Second)
	assert.True(t, h.m.sendHeartbeat(context.Background(), epoch))
	assert.Zero(t, h.client.meCalls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Heartbeat.WithLabelValues(ResultSkipped)))
}

func TestHeartbeatActive(t *testing.T) {
	h := newHarness(t)
	epoch := h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))

	h.clock.Advance(time.Minute)
	assert.True(t, h.m.sendHeartbeat(context.Background(), epoch))
	assert.EqualValues(t, 1, h.client.meCalls.Load())
}

func TestHeartbeatWithoutToken(t *testing.T) {
	h := newHarness(t)

	assert.True(t, h.m.sendHeartbeat(context.Background(), h.m.epoch.Load()))
	assert.Zero(t, h.client.meCalls.Load())
}

func TestHeartbeatUnauthorizedExpires(t *testing.T) {
	h := newHarness(t)
	h.client.meErr = errors.Unauthorized("Session expirée").
		WithMetadata(map[string]string{errors.MetadataErrorType: "token_expired"})
	epoch := h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))

	assert.False(t, h.m.sendHeartbeat(context.Background(), epoch))
	assert.Equal(t, []Reason{ReasonSessionExpired}, h.nav.Reasons())
	assert.Empty(t, h.m.Token(context.Background()))
}

func TestHeartbeatOtherErrorKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.client.meErr = errors.ServiceUnavailable("backend down")
	epoch := h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))

	assert.True(t, h.m.sendHeartbeat(context.Background(), epoch))
	assert.Empty(t, h.nav.Reasons())
	assert.NotEmpty(t, h.m.Token(context.Background()))
}

func TestHeartbeatStaleResultDiscarded(t *testing.T) {
	h := newHarness(t)
	h.client.meErr = errors.Unauthorized("Session expirée")
	epoch := h.seed(t, tokenExpiringAt(epochStart.Add(time.Hour)))
	h.m.Stop()

	assert.False(t, h.m.sendHeartbeat(context.Background(), epoch))
	assert.EqualValues(t, 1, h.client.meCalls.Load())
	assert.Empty(t, h.nav.Reasons())
	assert.NotEmpty(t, h.m.Token(context.Background()))
}
