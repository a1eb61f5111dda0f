package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken(42, "alice", time.Hour, "test-secret")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := VerifySessionToken(token, "test-secret")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := GenerateSessionToken(42, "alice", time.Hour, "test-secret")
	assert.NoError(t, err)

	_, err = VerifySessionToken(token, "other-secret")
	assert.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := GenerateSessionToken(42, "alice", -time.Minute, "test-secret")
	assert.NoError(t, err)

	_, err = VerifySessionToken(token, "test-secret")
	assert.Error(t, err)
}

func TestSessionTokenMissingSecret(t *testing.T) {
	_, err := GenerateSessionToken(42, "alice", time.Hour, "")
	assert.Error(t, err)

	_, err = VerifySessionToken("whatever", "")
	assert.Error(t, err)
}

func TestSessionTokenTampered(t *testing.T) {
	token, err := GenerateSessionToken(42, "alice", time.Hour, "test-secret")
	assert.NoError(t, err)

	_, err = VerifySessionToken(token+"x", "test-secret")
	assert.Error(t, err)
}

func TestSessionTokenDefaultTTL(t *testing.T) {
	token, err := GenerateSessionToken(7, "bob", 0, "test-secret")
	assert.NoError(t, err)

	claims, err := VerifySessionToken(token, "test-secret")
	assert.NoError(t, err)
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(23*time.Hour)))
}
