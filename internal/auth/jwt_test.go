package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := tm.Issue("uid-1", "laura@uni.edu.co", "20201234")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "laura@uni.edu.co", claims.Email)
	assert.Equal(t, "20201234", claims.UserID)
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenManager("secret-a", time.Hour).Issue("uid-1", "a@b.co", "1")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", -time.Minute)
	token, _, err := tm.Issue("uid-1", "a@b.co", "1")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.Issue("uid-1", "a@b.co", "1")
	require.NoError(t, err)

	fresh, expiresAt, err := tm.Refresh(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.Validate(fresh)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
}

func TestDecodeExpiry_NoSecretNeeded(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", 30*time.Minute)
	token, expiresAt, err := tm.Issue("uid-1", "a@b.co", "1")
	require.NoError(t, err)

	decoded, err := DecodeExpiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, expiresAt, decoded, time.Second)
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
