package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account owned by the identity store. The token engine only
// references it by ID and never persists it itself.
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // время создания
	Username     string    `json:"username"`      // уникальный username
	Email        string    `json:"email"`         // уникальный email, используется для входа
	PasswordHash string    `json:"-"`             // argon2id PHC, пусто для аккаунтов без пароля
	ID           uuid.UUID `json:"id"`            // UUID пользователя
}

// HasPassword reports whether the account can sign in through the password flow.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Claim is a typed attribute attached to a user.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// RefreshToken is an opaque, single-use secret bound to a user.
type RefreshToken struct {
	ExpirationDate time.Time `json:"expiration_date"` // время истечения
	Token          string    `json:"token"`           // base64url от 32 случайных байт
	ID             uuid.UUID `json:"id"`              // UUID токена
	UserID         uuid.UUID `json:"user_id"`         // ID пользователя
}

// Expired reports whether the token is past its expiration date at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpirationDate)
}
