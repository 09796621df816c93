// Package redisstore keeps refresh tokens in Redis. Each token lives under
// its own key with a TTL; a per-user set indexes the tokens of a user.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

const (
	// DefaultPrefix namespaces every key written by the store
	DefaultPrefix = "familysync"

	scanBatch = 100
)

// Store implements storage.RefreshTokenStorage on Redis.
type Store struct {
	rdb    redis.Cmdable
	now    func() time.Time
	prefix string
	ttl    time.Duration
}

var _ storage.RefreshTokenStorage = (*Store)(nil)

// New creates a Store. An empty prefix falls back to DefaultPrefix and a
// non-positive ttl to storage.DefaultRefreshTokenTTL.
func New(rdb redis.Cmdable, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = storage.DefaultRefreshTokenTTL
	}
	return &Store{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Ping verifies Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) tokenKey(token string) string {
	return s.prefix + ":refresh:" + token
}

func (s *Store) userKey(userID uuid.UUID) string {
	return s.prefix + ":refresh:user:" + userID.String()
}

// CreateRefreshToken stores a new token and indexes it under its user.
func (s *Store) CreateRefreshToken(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	token, err := storage.NewRefreshToken(userID, s.ttl, s.now())
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode refresh token: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(token.Token), encoded, s.ttl)
		pipe.SAdd(ctx, s.userKey(userID), token.Token)
		// Tokens share the ttl, so the index expires with the newest one
		pipe.Expire(ctx, s.userKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return token, nil
}

// ConsumeRefreshToken removes the token with GETDEL, so only one caller can
// ever receive it.
func (s *Store) ConsumeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	raw, err := s.rdb.GetDel(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	refreshToken, err := decode(raw)
	if err != nil {
		return nil, err
	}

	if err := s.rdb.SRem(ctx, s.userKey(refreshToken.UserID), token).Err(); err != nil {
		return nil, fmt.Errorf("failed to unindex refresh token: %w", err)
	}

	return refreshToken, nil
}

// GetUserTokens returns the user's live tokens, newest expiry first.
// Index entries whose token already expired are pruned on the way.
func (s *Store) GetUserTokens(ctx context.Context, userID uuid.UUID) ([]*models.RefreshToken, error) {
	members, err := s.rdb.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list user tokens: %w", err)
	}

	tokens := make([]*models.RefreshToken, 0, len(members))
	if len(members) == 0 {
		return tokens, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = s.tokenKey(m)
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load user tokens: %w", err)
	}

	var stale []any
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, members[i])
			continue
		}
		token, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	if len(stale) > 0 {
		if err := s.rdb.SRem(ctx, s.userKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune user tokens: %w", err)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].ExpirationDate.After(tokens[j].ExpirationDate)
	})

	return tokens, nil
}

// DeleteUserTokens deletes every token of the user and its index.
func (s *Store) DeleteUserTokens(ctx context.Context, userID uuid.UUID) (int, error) {
	members, err := s.rdb.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list user tokens: %w", err)
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = s.tokenKey(m)
	}

	var deleted *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			deleted = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, s.userKey(userID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user tokens: %w", err)
	}

	if deleted == nil {
		return 0, nil
	}
	return int(deleted.Val()), nil
}

// DeleteExpiredTokens prunes index entries left behind by tokens Redis has
// already expired. It returns the number of entries removed.
func (s *Store) DeleteExpiredTokens(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)

	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+":refresh:user:*", scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan token indexes: %w", err)
		}

		for _, key := range keys {
			n, err := s.pruneIndex(ctx, key)
			if err != nil {
				return removed, err
			}
			removed += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return removed, nil
}

func (s *Store) pruneIndex(ctx context.Context, indexKey string) (int, error) {
	members, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list token index %s: %w", indexKey, err)
	}

	var stale []any
	for _, m := range members {
		exists, err := s.rdb.Exists(ctx, s.tokenKey(m)).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to check refresh token: %w", err)
		}
		if exists == 0 {
			stale = append(stale, m)
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}

	if err := s.rdb.SRem(ctx, indexKey, stale...).Err(); err != nil {
		return 0, fmt.Errorf("failed to prune token index %s: %w", indexKey, err)
	}

	return len(stale), nil
}

func decode(raw []byte) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("failed to decode refresh token: %w", err)
	}
	return token, nil
}
