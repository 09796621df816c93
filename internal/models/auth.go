package models

import "time"

// TokenTypeBearer is the only token type issued by the service.
const TokenTypeBearer = "Bearer"

// AuthenticationResponse is built fresh on every issuance and never persisted.
type AuthenticationResponse struct {
	RefreshTokenExpiryDate time.Time `json:"refresh_token_expiry_date"`
	AccessToken            string    `json:"access_token"`
	TokenType              string    `json:"token_type"`
	RefreshToken           string    `json:"refresh_token"`
	ExpiresIn              int       `json:"expires_in"`
}
