package storage

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRefreshToken(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	token, err := NewRefreshToken(userID, time.Hour, now)
	require.NoError(t, err)

	assert.Equal(t, userID, token.UserID)
	assert.NotEqual(t, uuid.Nil, token.ID)
	assert.Equal(t, now.Add(time.Hour), token.ExpirationDate)

	raw, err := base64.URLEncoding.DecodeString(token.Token)
	require.NoError(t, err)
	assert.Len(t, raw, refreshTokenBytes)
}

func TestNewRefreshToken_DefaultTTL(t *testing.T) {
	now := time.Now()

	token, err := NewRefreshToken(uuid.New(), 0, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(DefaultRefreshTokenTTL), token.ExpirationDate, time.Second)
}

func TestNewRefreshToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewRefreshToken(uuid.New(), time.Hour, time.Now())
		require.NoError(t, err)
		assert.False(t, seen[token.Token], "token generated twice")
		seen[token.Token] = true
	}
}
