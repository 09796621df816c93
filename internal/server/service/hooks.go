package service

import "github.com/FamilySync/Services-Authentication/internal/models"

// TokenIssuer mints access tokens for a set of claims.
type TokenIssuer interface {
	Issue(userClaims []models.Claim) (token string, expiresIn int, err error)
}

// Recorder receives token lifecycle events; metrics.Metrics implements it.
type Recorder interface {
	TokenIssued(reason string)
	RefreshFailed(reason string)
	LoggedOut()
}

// Token issue reasons
const (
	ReasonLogin   = "login"
	ReasonRefresh = "refresh"
)

// Refresh failure reasons
const (
	FailureNotFound    = "not_found"
	FailureExpired     = "expired"
	FailureUnknownUser = "unknown_user"
)

type nopRecorder struct{}

func (nopRecorder) TokenIssued(string)   {}
func (nopRecorder) RefreshFailed(string) {}
func (nopRecorder) LoggedOut()           {}
