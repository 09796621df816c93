package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/FamilySync/Services-Authentication/internal/server"
	"github.com/FamilySync/Services-Authentication/internal/server/jwt"
	"github.com/FamilySync/Services-Authentication/internal/server/metrics"
	"github.com/FamilySync/Services-Authentication/internal/server/middleware"
	"github.com/FamilySync/Services-Authentication/internal/server/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the authentication server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.JWT.Validate(); err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.HTTP.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				logger.Error("failed to close stores", slog.Any("error", err))
			}
		}()
		logger.Info("stores opened",
			slog.String("db_driver", cfg.Database.Driver),
			slog.String("token_store", cfg.Tokens.Store))

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(reg)
		m.SetBuildInfo(Version, GitCommit)

		tokens := jwt.NewService(jwt.Config{
			Secret:         []byte(cfg.JWT.Secret),
			Issuer:         cfg.JWT.Issuer,
			Audience:       cfg.JWT.Audience,
			AccessTokenTTL: cfg.JWT.AccessTTL,
		})

		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Idle, logger)
		defer limiter.Stop()

		router := server.NewRouter(server.Dependencies{
			Logger:       logger,
			Identity:     service.NewIdentityService(logger, st.identity, st.tokens, tokens, m),
			Claims:       service.NewClaimService(logger, st.identity),
			Validator:    tokens,
			LoginLimiter: limiter,
			Metrics:      m,
			Gatherer:     reg,
			Pingers:      st.pingers,
			BasePath:     cfg.HTTP.BasePath,
			Version:      Version,
		})

		if err := server.New(cfg.HTTP, router, logger).Run(ctx); err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (env: FAMILYSYNC_AUTH_HTTP_ADDR)")
}
