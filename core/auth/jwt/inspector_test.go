package jwt

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawToken(payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`)) + "." +
		enc.EncodeToString([]byte(payload)) + ".c2ln"
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"a.b.c", true},
		{"", false},
		{"a.b", false},
		{"a.b.c.d", false},
		{"a..c", false},
		{".b.c", false},
		{"a.b.", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWellFormed(tt.token))
		})
	}
}

func TestDecode(t *testing.T) {
	token := rawToken(`{"id":7,"username":"op1","role":"user","exp":1700000600,"iat":1700000000,"lastActivity":1700000000123}`)

	payload, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), payload.UserID)
	assert.Equal(t, "op1", payload.Username)
	assert.Equal(t, "user", payload.Role)
	assert.WithinDuration(t, time.Unix(1700000600, 0), payload.ExpiresAt, 0)
	assert.WithinDuration(t, time.UnixMilli(1700000000123), payload.LastActivity, 0)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("not-a-token")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = Decode("a.b.c")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = Decode(rawToken(`{"username":"op1"}`))
	assert.ErrorIs(t, err, ErrMissingExpiry)
}

func TestIsExpired(t *testing.T) {
	exp := time.Unix(1700000600, 0)
	token := rawToken(`{"exp":1700000600}`)

	assert.False(t, IsExpired(token, exp.Add(-time.Second)))
	assert.True(t, IsExpired(token, exp))
	assert.True(t, IsExpired(token, exp.Add(time.Second)))
}

func TestIsExpiredFailsClosed(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.True(t, IsExpired("", now))
	assert.True(t, IsExpired("x.y.z", now))
	assert.True(t, IsExpired(rawToken(`{"sub":"1"}`), now))
}

func TestExpiresIn(t *testing.T) {
	now := time.Unix(1700000000, 0)
	d, err := ExpiresIn(rawToken(`{"exp":1700000090}`), now)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = ExpiresIn("bad", now)
	assert.Error(t, err)
}
