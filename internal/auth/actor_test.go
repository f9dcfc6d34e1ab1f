package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_RoundTrip(t *testing.T) {
	v := NewTokenValidator("test-secret")

	token, err := v.Sign(42, time.Hour)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestTokenValidator_WrongSecret(t *testing.T) {
	token, err := NewTokenValidator("a").Sign(1, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenValidator("b").Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenValidator_Expired(t *testing.T) {
	v := NewTokenValidator("test-secret")
	token, err := v.Sign(1, -time.Minute)
	require.NoError(t, err)

	_, err = v.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
