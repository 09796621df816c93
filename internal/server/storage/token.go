package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/models"
)

// DefaultRefreshTokenTTL is the lifetime of a refresh token from creation.
const DefaultRefreshTokenTTL = 72 * time.Hour

// refreshTokenBytes is the amount of randomness in a refresh token.
const refreshTokenBytes = 32

// RefreshTokenStorage defines interface for refresh token persistence.
// Tokens are immutable: rotation always creates a new token.
type RefreshTokenStorage interface {
	// CreateRefreshToken generates and stores a new token for the user
	CreateRefreshToken(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error)

	// ConsumeRefreshToken atomically looks up the token and deletes it.
	// Returns ErrTokenNotFound if token doesn't exist. Of several concurrent
	// calls with the same token at most one succeeds.
	ConsumeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// GetUserTokens retrieves all refresh tokens for a user
	// Returns empty slice if no tokens found
	GetUserTokens(ctx context.Context, userID uuid.UUID) ([]*models.RefreshToken, error)

	// DeleteUserTokens deletes all refresh tokens for a user
	// Returns number of deleted tokens
	DeleteUserTokens(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpiredTokens removes all expired tokens
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

// NewRefreshToken builds an unsaved token for userID that expires ttl after now.
// Backends call it from CreateRefreshToken so every store issues the same format.
func NewRefreshToken(userID uuid.UUID, ttl time.Duration, now time.Time) (*models.RefreshToken, error) {
	if ttl <= 0 {
		ttl = DefaultRefreshTokenTTL
	}

	// Генерируем случайные 32 байта
	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random token: %w", err)
	}

	return &models.RefreshToken{
		ID:             uuid.New(),
		UserID:         userID,
		Token:          base64.URLEncoding.EncodeToString(tokenBytes),
		ExpirationDate: now.Add(ttl).UTC(),
	}, nil
}
