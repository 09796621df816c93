// Package jwt mints and validates the service's HS256 access tokens.
package jwt

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/FamilySync/Services-Authentication/internal/models"
)

// Defaults used when Config leaves a field empty
const (
	DefaultIssuer         = "familysync.auth"
	DefaultAudience       = "api://familysync"
	DefaultAccessTokenTTL = 120 * time.Minute
)

var (
	// ErrInvalidToken is returned for tokens that fail signature, issuer,
	// audience or lifetime checks
	ErrInvalidToken = errors.New("invalid access token")
	// ErrNegativeLifetime means the minted token was already expired
	ErrNegativeLifetime = errors.New("access token lifetime is negative")
)

// registered claim names are owned by the service and never copied from user claims
var registered = map[string]struct{}{
	"iss": {}, "aud": {}, "exp": {}, "iat": {}, "nbf": {}, "jti": {}, "sub": {},
}

// Config contains JWT settings
type Config struct {
	Secret         []byte
	Issuer         string
	Audience       string
	AccessTokenTTL time.Duration
}

// Service provides JWT token generation and validation
type Service struct {
	now      func() time.Time
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewService creates a new JWT service
func NewService(cfg Config) *Service {
	s := &Service{
		secret:   cfg.Secret,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.AccessTokenTTL,
		now:      time.Now,
	}
	if s.issuer == "" {
		s.issuer = DefaultIssuer
	}
	if s.audience == "" {
		s.audience = DefaultAudience
	}
	if s.ttl == 0 {
		s.ttl = DefaultAccessTokenTTL
	}
	return s
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue signs an access token carrying the user's claims. It returns the
// token and its remaining validity in whole seconds.
func (s *Service) Issue(userClaims []models.Claim) (string, int, error) {
	now := s.now()
	expiresAt := jwt.NewNumericDate(now.Add(s.ttl))

	mc := jwt.MapClaims{
		"iss": s.issuer,
		"aud": s.audience,
		"iat": jwt.NewNumericDate(now),
		"nbf": jwt.NewNumericDate(now),
		"exp": expiresAt,
	}

	for _, c := range userClaims {
		if _, ok := registered[c.Type]; ok {
			continue
		}
		switch existing := mc[c.Type].(type) {
		case nil:
			mc[c.Type] = c.Value
		case string:
			mc[c.Type] = []string{existing, c.Value}
		case []string:
			mc[c.Type] = append(existing, c.Value)
		}
	}

	expiresIn := int(expiresAt.Sub(now) / time.Second)
	if expiresIn < 0 {
		return "", 0, fmt.Errorf("%w: %d seconds", ErrNegativeLifetime, expiresIn)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(s.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, expiresIn, nil
}

// Validate verifies the token and returns the user claims it carries,
// sorted by type. Multi-valued claims keep their issued order.
func (s *Service) Validate(tokenString string) ([]models.Claim, error) {
	mc := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, mc, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	keys := make([]string, 0, len(mc))
	for k := range mc {
		if _, ok := registered[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	result := make([]models.Claim, 0, len(keys))
	for _, k := range keys {
		switch v := mc[k].(type) {
		case string:
			result = append(result, models.Claim{Type: k, Value: v})
		case []any:
			for _, item := range v {
				result = append(result, models.Claim{Type: k, Value: fmt.Sprint(item)})
			}
		default:
			result = append(result, models.Claim{Type: k, Value: fmt.Sprint(v)})
		}
	}

	return result, nil
}
