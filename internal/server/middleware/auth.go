package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/FamilySync/Services-Authentication/internal/claims"
	"github.com/FamilySync/Services-Authentication/internal/models"
)

// TokenValidator parses an access token into the claims it carries
type TokenValidator interface {
	Validate(token string) ([]models.Claim, error)
}

// Authenticate создает middleware для проверки JWT токена.
// Validated claims are available through ClaimsFromContext.
func Authenticate(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "missing Authorization header")
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, models.TokenTypeBearer) || token == "" {
				logger.WarnContext(ctx, "invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			userClaims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, userClaims)))
		})
	}
}

// RequirePolicy rejects callers whose claims do not satisfy policy.
// It must run after Authenticate.
func RequirePolicy(logger *slog.Logger, policy string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userClaims, ok := ClaimsFromContext(ctx)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			if !claims.Satisfies(userClaims, policy) {
				logger.WarnContext(ctx, "policy not satisfied", slog.String("policy", policy))
				writeError(w, http.StatusForbidden, "insufficient access")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
