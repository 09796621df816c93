package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/FamilySync/Services-Authentication/pkg/api"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger  *slog.Logger
	pingers map[string]Pinger
	version string
}

// NewHealthHandler создает новый handler для health check. pingers are
// keyed by a name used only in logs.
func NewHealthHandler(logger *slog.Logger, version string, pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{logger: logger, version: version, pingers: pingers}
}

// Health обрабатывает GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := api.HealthResponse{Status: "ok", Database: "ok", Version: h.version}
	status := http.StatusOK

	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			h.logger.ErrorContext(ctx, "health check failed", slog.String("store", name), slog.Any("error", err))
			resp.Status = "unavailable"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	sendJSON(h.logger, w, resp, status)
}
