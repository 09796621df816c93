// Package handlers contains the HTTP controllers of the service.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FamilySync/Services-Authentication/internal/server/service"
	"github.com/FamilySync/Services-Authentication/pkg/api"
)

// maxBodyBytes caps request bodies; every body here is a small JSON object
const maxBodyBytes = 1 << 20

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	sendJSON(logger, w, api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}, statusCode)
}

// sendServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognised is logged and reported as a generic 500.
func sendServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		sendError(logger, w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		sendError(logger, w, "invalid credentials", http.StatusForbidden)
	case errors.Is(err, service.ErrConflict):
		sendError(logger, w, "username or email already taken", http.StatusConflict)
	case errors.Is(err, service.ErrBadRequest):
		sendError(logger, w, err.Error(), http.StatusBadRequest)
	default:
		logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		sendError(logger, w, "internal server error", http.StatusInternalServerError)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(dst)
}
