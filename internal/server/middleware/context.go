package middleware

import (
	"context"

	"github.com/FamilySync/Services-Authentication/internal/models"
)

type contextKey string

const claimsKey contextKey = "claims"

// WithClaims stores the caller's validated claims in ctx
func WithClaims(ctx context.Context, userClaims []models.Claim) context.Context {
	return context.WithValue(ctx, claimsKey, userClaims)
}

// ClaimsFromContext returns the claims stored by Authenticate
func ClaimsFromContext(ctx context.Context) ([]models.Claim, bool) {
	userClaims, ok := ctx.Value(claimsKey).([]models.Claim)
	return userClaims, ok
}
