package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/models"
)

// IdentityGateway is the system of record for accounts, credentials and
// claims. Password hashing, password policy and uniqueness are its concern;
// callers only interpret the results.
type IdentityGateway interface {
	// FindByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// VerifyPassword checks a password against the stored hash.
	// Password-less accounts never verify.
	VerifyPassword(ctx context.Context, user *models.User, password string) (bool, error)

	// GetClaims returns every claim attached to the user
	GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error)

	// AddClaims attaches claims to the user; either all of them are added or none
	AddClaims(ctx context.Context, user *models.User, claims ...models.Claim) error

	// RemoveClaim removes every claim matching both type and value
	RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error

	// CreateUser creates the account. An empty password creates a password-less
	// account. Returns ErrUserAlreadyExists or ErrInvalidPassword on rejection.
	CreateUser(ctx context.Context, user *models.User, password string) error

	// DeleteUser deletes the account and its claims
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, user *models.User) error
}
