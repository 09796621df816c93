package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/claims"
	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
	"github.com/FamilySync/Services-Authentication/internal/validation"
	"github.com/FamilySync/Services-Authentication/pkg/api"
)

// IdentityService logs users in and rotates their refresh tokens
type IdentityService struct {
	logger   *slog.Logger
	identity storage.IdentityGateway
	tokens   storage.RefreshTokenStorage
	issuer   TokenIssuer
	metrics  Recorder
	now      func() time.Time
}

// NewIdentityService creates the service. metrics may be nil.
func NewIdentityService(
	logger *slog.Logger,
	identity storage.IdentityGateway,
	tokens storage.RefreshTokenStorage,
	issuer TokenIssuer,
	metrics Recorder,
) *IdentityService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &IdentityService{
		logger:   logger,
		identity: identity,
		tokens:   tokens,
		issuer:   issuer,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Login checks the credentials and issues a fresh token pair. An unknown
// email yields ErrNotFound and a wrong password ErrForbidden.
func (s *IdentityService) Login(ctx context.Context, req api.LoginRequest) (*models.AuthenticationResponse, error) {
	user, err := s.identity.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: no user with that email", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.identity.VerifyPassword(ctx, user, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "password rejected", slog.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	resp, err := s.generate(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.TokenIssued(ReasonLogin)
	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID.String()))

	return resp, nil
}

// Refresh consumes the refresh token and issues a new pair. The token is
// consumed before any other check, so a rejected token is still spent.
func (s *IdentityService) Refresh(ctx context.Context, token string) (*models.AuthenticationResponse, error) {
	if token == "" {
		s.metrics.RefreshFailed(FailureNotFound)
		return nil, fmt.Errorf("%w: refresh token is empty", ErrNotFound)
	}

	consumed, err := s.tokens.ConsumeRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.metrics.RefreshFailed(FailureNotFound)
			return nil, fmt.Errorf("%w: refresh token", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	if consumed.Expired(s.now()) {
		s.metrics.RefreshFailed(FailureExpired)
		s.logger.InfoContext(ctx, "expired refresh token presented", slog.String("user_id", consumed.UserID.String()))
		return nil, fmt.Errorf("%w: refresh token expired", ErrNotFound)
	}

	user, err := s.identity.FindByID(ctx, consumed.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.metrics.RefreshFailed(FailureUnknownUser)
			return nil, fmt.Errorf("%w: token owner", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find token owner: %w", err)
	}

	resp, err := s.generate(ctx, user)
	if err != nil {
		return nil, err
	}

	s.metrics.TokenIssued(ReasonRefresh)

	return resp, nil
}

// Logout spends the refresh token if it still exists. A missing or already
// consumed token is not an error.
func (s *IdentityService) Logout(ctx context.Context, token string) error {
	defer s.metrics.LoggedOut()

	if token == "" {
		return nil
	}

	if _, err := s.tokens.ConsumeRefreshToken(ctx, token); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.logger.DebugContext(ctx, "logout with unknown refresh token")
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

// Create registers a user and assigns the default claims. If the claims
// cannot be stored the user is deleted again.
func (s *IdentityService) Create(ctx context.Context, req api.CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	user := &models.User{
		ID:        uuid.New(),
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: s.now().UTC(),
	}

	if err := s.identity.CreateUser(ctx, user, req.Password); err != nil {
		switch {
		case errors.Is(err, storage.ErrUserAlreadyExists):
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		case errors.Is(err, storage.ErrInvalidPassword):
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	defaults := []models.Claim{
		{Type: claims.ClaimIdentityID, Value: user.ID.String()},
		{Type: claims.ClaimUsername, Value: user.Username},
		{Type: claims.ClaimEmail, Value: user.Email},
		{Type: claims.ClaimFamily, Value: claims.UserBasic.String()},
	}

	if err := s.identity.AddClaims(ctx, user, defaults...); err != nil {
		s.logger.ErrorContext(ctx, "failed to assign default claims, removing user",
			slog.String("user_id", user.ID.String()),
			slog.Any("error", err))

		if delErr := s.identity.DeleteUser(ctx, user); delErr != nil {
			return nil, fmt.Errorf("failed to assign default claims: %w", errors.Join(err, delErr))
		}
		return nil, fmt.Errorf("failed to assign default claims: %w", err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))

	return user, nil
}

// Get returns the user with the given ID
func (s *IdentityService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *IdentityService) generate(ctx context.Context, user *models.User) (*models.AuthenticationResponse, error) {
	userClaims, err := s.identity.GetClaims(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	accessToken, expiresIn, err := s.issuer.Issue(userClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refreshToken, err := s.tokens.CreateRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	return &models.AuthenticationResponse{
		AccessToken:            accessToken,
		ExpiresIn:              expiresIn,
		TokenType:              models.TokenTypeBearer,
		RefreshToken:           refreshToken.Token,
		RefreshTokenExpiryDate: refreshToken.ExpirationDate,
	}, nil
}
