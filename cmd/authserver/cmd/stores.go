package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/FamilySync/Services-Authentication/internal/config"
	"github.com/FamilySync/Services-Authentication/internal/server/handlers"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
	"github.com/FamilySync/Services-Authentication/internal/server/storage/boltdb"
	"github.com/FamilySync/Services-Authentication/internal/server/storage/redisstore"
	"github.com/FamilySync/Services-Authentication/internal/server/storage/sqlstore"
)

// stores bundles the opened backends
type stores struct {
	identity *sqlstore.Storage
	tokens   storage.RefreshTokenStorage
	pingers  map[string]handlers.Pinger
	closers  []func() error
}

// openStores opens the SQL database (running migrations) and the configured
// refresh token backend.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	sqlStore, err := sqlstore.New(ctx, sqlstore.Config{
		Driver:          sqlstore.Driver(cfg.Database.Driver),
		DSN:             cfg.Database.DSN,
		RefreshTokenTTL: cfg.Tokens.RefreshTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &stores{
		identity: sqlStore,
		pingers:  map[string]handlers.Pinger{"database": sqlStore},
		closers:  []func() error{sqlStore.Close},
	}

	switch cfg.Tokens.Store {
	case config.StoreSQL:
		s.tokens = sqlStore

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, rdb.Close)

		redisStore := redisstore.New(rdb, cfg.Redis.Prefix, cfg.Tokens.RefreshTTL)
		if err := redisStore.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.tokens = redisStore
		s.pingers["redis"] = redisStore

	case config.StoreBolt:
		boltStore, err := boltdb.New(ctx, cfg.Bolt.Path, cfg.Tokens.RefreshTTL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to open token database: %w", err)
		}
		s.closers = append(s.closers, boltStore.Close)
		s.tokens = boltStore

	default:
		s.Close()
		return nil, fmt.Errorf("unsupported token store %q", cfg.Tokens.Store)
	}

	return s, nil
}

// Close closes every backend, last opened first
func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
