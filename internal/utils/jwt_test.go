package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateSessionToken("secret", userID, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseSessionToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("secret", uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken("other-secret", token)
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken("secret", uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken("secret", token)
	assert.Error(t, err)
}
