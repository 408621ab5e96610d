package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := []byte("secret")
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	active := issued.Add(30 * time.Second)

	token, err := GenerateToken("alice", issued, active, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.UserID)
	require.Equal(t, active.Unix(), claims.LastActivity)
	require.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
}

func TestParseTokenRejects(t *testing.T) {
	secret := []byte("secret")
	now := time.Now()

	expired, err := GenerateToken("alice", now.Add(-2*time.Hour), now.Add(-2*time.Hour), secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(expired, secret)
	require.Error(t, err)

	valid, err := GenerateToken("alice", now, now, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(valid, []byte("other"))
	require.Error(t, err)

	_, err = ParseToken("not-a-token", secret)
	require.Error(t, err)
}
