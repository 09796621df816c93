package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/pkg/api"
)

// IdentityService is the token lifecycle used by IdentityHandler
type IdentityService interface {
	Login(ctx context.Context, req api.LoginRequest) (*models.AuthenticationResponse, error)
	Refresh(ctx context.Context, token string) (*models.AuthenticationResponse, error)
	Logout(ctx context.Context, token string) error
	Create(ctx context.Context, req api.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// IdentityHandler обрабатывает запросы /Identity
type IdentityHandler struct {
	logger  *slog.Logger
	service IdentityService
	// basePath prefixes the Location header of created users
	basePath string
}

// NewIdentityHandler создает новый handler для авторизации
func NewIdentityHandler(logger *slog.Logger, service IdentityService, basePath string) *IdentityHandler {
	return &IdentityHandler{logger: logger, service: service, basePath: basePath}
}

// Login обрабатывает POST /Identity/Login
func (h *IdentityHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		sendError(h.logger, w, "email and password are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Login(ctx, req)
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	setRefreshCookie(w, resp.RefreshToken, resp.RefreshTokenExpiryDate)
	sendJSON(h.logger, w, api.TokenResponse{Token: resp.AccessToken}, http.StatusOK)
}

// Logout обрабатывает POST /Identity/Logout. The cookie is cleared even
// when revoking the token fails.
func (h *IdentityHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.service.Logout(ctx, refreshTokenFromRequest(r))
	clearRefreshCookie(w)
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Refresh обрабатывает POST /Identity/Token/Refresh
func (h *IdentityHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp, err := h.service.Refresh(ctx, refreshTokenFromRequest(r))
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	if resp.AccessToken == "" {
		sendError(h.logger, w, "no access token issued", http.StatusUnauthorized)
		return
	}

	setRefreshCookie(w, resp.RefreshToken, resp.RefreshTokenExpiryDate)
	sendJSON(h.logger, w, api.TokenResponse{Token: resp.AccessToken}, http.StatusOK)
}

// Create обрабатывает POST /Identity/Identity
func (h *IdentityHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" {
		sendError(h.logger, w, "username and email are required", http.StatusBadRequest)
		return
	}

	user, err := h.service.Create(ctx, req)
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	w.Header().Set("Location", h.basePath+"/Identity/"+user.ID.String())
	sendJSON(h.logger, w, toUserResponse(user), http.StatusCreated)
}

// GetByID обрабатывает GET /Identity/{id}
func (h *IdentityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(h.logger, w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.service.Get(ctx, id)
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, toUserResponse(user), http.StatusOK)
}

func toUserResponse(user *models.User) api.UserResponse {
	return api.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
