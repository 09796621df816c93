package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/claims"
	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockIdentityService returns canned results and records its inputs
type mockIdentityService struct {
	loginResp   *models.AuthenticationResponse
	loginErr    error
	refreshResp *models.AuthenticationResponse
	refreshErr  error
	logoutErr   error
	user        *models.User
	createErr   error
	getErr      error

	lastLogin    api.LoginRequest
	lastRefresh  string
	lastLogout   string
	logoutCalled bool
}

func (m *mockIdentityService) Login(_ context.Context, req api.LoginRequest) (*models.AuthenticationResponse, error) {
	m.lastLogin = req
	return m.loginResp, m.loginErr
}

func (m *mockIdentityService) Refresh(_ context.Context, token string) (*models.AuthenticationResponse, error) {
	m.lastRefresh = token
	return m.refreshResp, m.refreshErr
}

func (m *mockIdentityService) Logout(_ context.Context, token string) error {
	m.logoutCalled = true
	m.lastLogout = token
	return m.logoutErr
}

func (m *mockIdentityService) Create(_ context.Context, req api.CreateUserRequest) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.User{ID: m.user.ID, Username: req.Username, Email: req.Email, CreatedAt: m.user.CreatedAt}, nil
}

func (m *mockIdentityService) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

// mockClaimService returns canned results
type mockClaimService struct {
	access   []claims.Access
	claim    *models.Claim
	err      error
	upserted models.Claim
}

func (m *mockClaimService) Get(context.Context, uuid.UUID) ([]claims.Access, error) {
	return m.access, m.err
}

func (m *mockClaimService) GetAll(context.Context) []claims.Definition {
	return claims.Assignable()
}

func (m *mockClaimService) GetByType(_ context.Context, _ uuid.UUID, claimType string) (*models.Claim, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Claim{Type: claimType, Value: m.claim.Value}, nil
}

func (m *mockClaimService) Upsert(_ context.Context, _ uuid.UUID, claim models.Claim) (*models.Claim, error) {
	m.upserted = claim
	if m.err != nil {
		return nil, m.err
	}
	return &claim, nil
}
