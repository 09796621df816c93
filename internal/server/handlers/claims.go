package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/claims"
	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/pkg/api"
)

// ClaimService is the claim management used by ClaimHandler
type ClaimService interface {
	Get(ctx context.Context, userID uuid.UUID) ([]claims.Access, error)
	GetAll(ctx context.Context) []claims.Definition
	GetByType(ctx context.Context, userID uuid.UUID, claimType string) (*models.Claim, error)
	Upsert(ctx context.Context, userID uuid.UUID, claim models.Claim) (*models.Claim, error)
}

// ClaimHandler обрабатывает запросы /Claim
type ClaimHandler struct {
	logger   *slog.Logger
	service  ClaimService
	basePath string
}

// NewClaimHandler creates a new ClaimHandler
func NewClaimHandler(logger *slog.Logger, service ClaimService, basePath string) *ClaimHandler {
	return &ClaimHandler{logger: logger, service: service, basePath: basePath}
}

// GetForUser обрабатывает GET /Claim/User/{id}
func (h *ClaimHandler) GetForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	access, err := h.service.Get(ctx, id)
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, access, http.StatusOK)
}

// GetAll обрабатывает GET /Claim
func (h *ClaimHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, h.service.GetAll(r.Context()), http.StatusOK)
}

// Upsert обрабатывает PUT /Claim/User/{id}/claims
func (h *ClaimHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req api.ClaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode claim request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	claim, err := h.service.Upsert(ctx, id, models.Claim{Type: req.Claim, Value: req.AccessLevel})
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	w.Header().Set("Location", h.basePath+"/Claim/"+id.String()+"/claims/"+claim.Type)
	sendJSON(h.logger, w, toClaimResponse(claim), http.StatusCreated)
}

// GetByType обрабатывает GET /Claim/{id}/claims/{type}
func (h *ClaimHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	claim, err := h.service.GetByType(ctx, id, r.PathValue("type"))
	if err != nil {
		sendServiceError(ctx, h.logger, w, err)
		return
	}

	sendJSON(h.logger, w, toClaimResponse(claim), http.StatusOK)
}

func (h *ClaimHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(h.logger, w, "invalid user id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func toClaimResponse(c *models.Claim) api.ClaimRequest {
	return api.ClaimRequest{Claim: c.Type, AccessLevel: c.Value}
}
