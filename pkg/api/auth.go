// Package api holds the JSON bodies exchanged with clients of the service.
package api

import (
	"time"

	"github.com/google/uuid"
)

// LoginRequest представляет учетные данные пользователя
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the access token; the refresh token travels in a cookie
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateUserRequest представляет запрос на создание пользователя
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	// Password is optional; an empty value creates a password-less account
	Password string `json:"password,omitempty"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	CreatedAt time.Time `json:"createdAt"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ID        uuid.UUID `json:"id"`
}

// ClaimRequest assigns a single claim, e.g. {"claim":"cal","accessLevel":"ADMIN"}
type ClaimRequest struct {
	Claim       string `json:"claim"`
	AccessLevel string `json:"accessLevel"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Version  string `json:"version,omitempty"`
}
