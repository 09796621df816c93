// Package server wires the HTTP routes and runs the listener.
package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FamilySync/Services-Authentication/internal/claims"
	"github.com/FamilySync/Services-Authentication/internal/server/handlers"
	"github.com/FamilySync/Services-Authentication/internal/server/metrics"
	"github.com/FamilySync/Services-Authentication/internal/server/middleware"
)

// Dependencies are the collaborators of the router
type Dependencies struct {
	Logger       *slog.Logger
	Identity     handlers.IdentityService
	Claims       handlers.ClaimService
	Validator    middleware.TokenValidator
	LoginLimiter *middleware.RateLimiter
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Pingers      map[string]handlers.Pinger
	BasePath     string
	Version      string
}

// NewRouter builds the handler tree served under deps.BasePath.
// LoginLimiter may be nil to disable throttling.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	base := deps.BasePath

	identity := handlers.NewIdentityHandler(logger, deps.Identity, base)
	claimHandler := handlers.NewClaimHandler(logger, deps.Claims, base)
	health := handlers.NewHealthHandler(logger, deps.Version, deps.Pingers)

	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.Authenticate(logger, deps.Validator),
			middleware.RequirePolicy(logger, claims.PolicyAdmin),
		)
	}

	var login http.Handler = http.HandlerFunc(identity.Login)
	if deps.LoginLimiter != nil {
		login = middleware.RateLimit(deps.LoginLimiter)(login)
	}

	mux := http.NewServeMux()

	mux.Handle("POST "+base+"/Identity/Login", login)
	mux.HandleFunc("POST "+base+"/Identity/Logout", identity.Logout)
	mux.Handle("POST "+base+"/Identity/Token/Refresh", admin(identity.Refresh))
	mux.HandleFunc("POST "+base+"/Identity/Identity", identity.Create)
	mux.HandleFunc("GET "+base+"/Identity/{id}", identity.GetByID)

	mux.HandleFunc("GET "+base+"/Claim", claimHandler.GetAll)
	mux.Handle("GET "+base+"/Claim/User/{id}", admin(claimHandler.GetForUser))
	mux.Handle("PUT "+base+"/Claim/User/{id}/claims", admin(claimHandler.Upsert))
	mux.Handle("GET "+base+"/Claim/{id}/claims/{type}", admin(claimHandler.GetByType))

	mux.HandleFunc("GET /health", health.Health)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle("GET /metrics", metrics.Handler(gatherer))

	mws := []func(http.Handler) http.Handler{
		middleware.Recovery(logger),
		middleware.Logging(logger, "/health", "/metrics"),
	}
	if deps.Metrics != nil {
		mws = append(mws, middleware.Instrument(deps.Metrics))
	}
	return middleware.Chain(mux, mws...)
}
