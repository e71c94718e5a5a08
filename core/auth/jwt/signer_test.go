package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner(SignerConfig{})
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	signer, err := NewSigner(SignerConfig{Secret: "s3cret", TTL: time.Minute}, WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := signer.Sign(Claims{ID: 3, Username: "op1", Role: "admin"})
	require.NoError(t, err)
	assert.True(t, IsWellFormed(token))

	payload, err := Decode(token)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Minute), payload.ExpiresAt, 0)
	assert.WithinDuration(t, now, payload.LastActivity, 0)

	claims, err := signer.Verify(token, false)
	require.NoError(t, err)
	assert.Equal(t, "op1", claims.Username)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestVerifyExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	signer, err := NewSigner(SignerConfig{Secret: "s3cret", TTL: time.Minute}, WithNow(func() time.Time { return now }))
	require.NoError(t, err)

	token, err := signer.Sign(Claims{Username: "op1"})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = signer.Verify(token, false)
	assert.Error(t, err)

	claims, err := signer.Verify(token, true)
	require.NoError(t, err)
	assert.Equal(t, "op1", claims.Username)
}

func TestVerifyWrongSecret(t *testing.T) {
	a, _ := NewSigner(SignerConfig{Secret: "a"})
	b, _ := NewSigner(SignerConfig{Secret: "b"})

	token, err := a.Sign(Claims{Username: "op1"})
	require.NoError(t, err)

	_, err = b.Verify(token, true)
	assert.Error(t, err)
}
