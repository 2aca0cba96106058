package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, exp, err := m.GenerateAccessToken("user-1", "sid-1")
	req.NoError(err)
	req.NotEmpty(token)
	req.WithinDuration(time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("sid-1", claims.SessionID)
}

func TestJWTAccessAndRefreshUseSeparateSecrets(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	refresh, _, err := m.GenerateRefreshToken("user-1", "sid-1")
	req.NoError(err)

	_, err = m.ParseAccessToken(refresh)
	req.Error(err)

	claims, err := m.ParseRefreshToken(refresh)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	req := require.New(t)
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	token, _, err := m.GenerateAccessToken("user-1", "sid-1")
	req.NoError(err)

	_, err = m.ParseAccessToken(token)
	req.Error(err)
}

func TestJWTRejectsForeignSecret(t *testing.T) {
	req := require.New(t)
	a := NewJWTManager("secret-a", "refresh-a", time.Hour, time.Hour)
	b := NewJWTManager("secret-b", "refresh-b", time.Hour, time.Hour)

	token, _, err := a.GenerateAccessToken("user-1", "sid-1")
	req.NoError(err)

	_, err = b.ParseAccessToken(token)
	req.Error(err)
}
