package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/claims"
	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

// ClaimService reads and assigns per-user claims
type ClaimService struct {
	logger   *slog.Logger
	identity storage.IdentityGateway
}

// NewClaimService creates a new ClaimService
func NewClaimService(logger *slog.Logger, identity storage.IdentityGateway) *ClaimService {
	return &ClaimService{logger: logger, identity: identity}
}

// Get resolves the user's effective access for every catalog entry
func (s *ClaimService) Get(ctx context.Context, userID uuid.UUID) ([]claims.Access, error) {
	_, userClaims, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return claims.Resolve(userClaims), nil
}

// GetAll returns the catalog entries users can be assigned
func (s *ClaimService) GetAll(_ context.Context) []claims.Definition {
	return claims.Assignable()
}

// GetByType returns the user's first claim of the given type
func (s *ClaimService) GetByType(ctx context.Context, userID uuid.UUID, claimType string) (*models.Claim, error) {
	_, userClaims, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	c, ok := claims.Lookup(userClaims, claimType)
	if !ok {
		return nil, fmt.Errorf("%w: claim %q", ErrNotFound, claimType)
	}
	return &c, nil
}

// Upsert replaces every claim of the same type with the given one
func (s *ClaimService) Upsert(ctx context.Context, userID uuid.UUID, claim models.Claim) (*models.Claim, error) {
	if claim.Type == "" || claim.Value == "" {
		return nil, fmt.Errorf("%w: claim and access level are required", ErrBadRequest)
	}
	if _, known := claims.ByClaim(claim.Type); known {
		if _, ok := claims.ParseAccessLevel(claim.Value); !ok {
			return nil, fmt.Errorf("%w: unknown access level %q", ErrBadRequest, claim.Value)
		}
	}

	user, userClaims, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, existing := range userClaims {
		if existing.Type != claim.Type {
			continue
		}
		if err := s.identity.RemoveClaim(ctx, user, existing); err != nil {
			return nil, fmt.Errorf("failed to remove claim %q: %w", existing.Type, err)
		}
	}

	if err := s.identity.AddClaims(ctx, user, claim); err != nil {
		if errors.Is(err, storage.ErrInvalidClaim) {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return nil, fmt.Errorf("failed to add claim: %w", err)
	}

	s.logger.InfoContext(ctx, "claim assigned",
		slog.String("user_id", userID.String()),
		slog.String("claim", claim.Type),
		slog.String("value", claim.Value))

	return &claim, nil
}

func (s *ClaimService) load(ctx context.Context, userID uuid.UUID) (*models.User, []models.Claim, error) {
	user, err := s.identity.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	userClaims, err := s.identity.GetClaims(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load claims: %w", err)
	}

	return user, userClaims, nil
}
