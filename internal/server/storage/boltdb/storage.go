// Package boltdb keeps refresh tokens in an embedded bbolt file, for
// single-node deployments without a SQL server or Redis.
package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

var (
	// bucketTokens maps token -> JSON record
	bucketTokens = []byte("refresh_tokens")
	// bucketUserIndex maps "<user id>/<token>" -> nothing
	bucketUserIndex = []byte("refresh_tokens_by_user")

	errBucketMissing = errors.New("bucket not found")
)

// Storage represents BoltDB refresh token storage
type Storage struct {
	db  *bbolt.DB
	now func() time.Time
	ttl time.Duration
}

var _ storage.RefreshTokenStorage = (*Storage)(nil)

// New opens (or creates) the database file at dbPath.
func New(_ context.Context, dbPath string, ttl time.Duration) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	if ttl <= 0 {
		ttl = storage.DefaultRefreshTokenTTL
	}
	s := &Storage{db: db, ttl: ttl, now: time.Now}

	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close closes the database file
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketTokens, bucketUserIndex} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func buckets(tx *bbolt.Tx) (tokens, index *bbolt.Bucket, err error) {
	tokens = tx.Bucket(bucketTokens)
	index = tx.Bucket(bucketUserIndex)
	if tokens == nil || index == nil {
		return nil, nil, errBucketMissing
	}
	return tokens, index, nil
}

func userPrefix(userID uuid.UUID) []byte {
	return []byte(userID.String() + "/")
}

func indexKey(userID uuid.UUID, token string) []byte {
	return append(userPrefix(userID), token...)
}

// CreateRefreshToken generates and stores a new refresh token for the user
func (s *Storage) CreateRefreshToken(_ context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	token, err := storage.NewRefreshToken(userID, s.ttl, s.now())
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh token: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		tokens, index, err := buckets(tx)
		if err != nil {
			return err
		}
		if err := tokens.Put([]byte(token.Token), data); err != nil {
			return fmt.Errorf("failed to save refresh token: %w", err)
		}
		return index.Put(indexKey(userID, token.Token), nil)
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// ConsumeRefreshToken reads and deletes the token inside one write
// transaction. bbolt serializes writers, so a token is handed out once.
func (s *Storage) ConsumeRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	var refreshToken *models.RefreshToken

	err := s.db.Update(func(tx *bbolt.Tx) error {
		tokens, index, err := buckets(tx)
		if err != nil {
			return err
		}

		data := tokens.Get([]byte(token))
		if data == nil {
			return storage.ErrTokenNotFound
		}

		refreshToken = &models.RefreshToken{}
		if err := json.Unmarshal(data, refreshToken); err != nil {
			return fmt.Errorf("failed to unmarshal refresh token: %w", err)
		}

		if err := tokens.Delete([]byte(token)); err != nil {
			return fmt.Errorf("failed to delete refresh token: %w", err)
		}
		return index.Delete(indexKey(refreshToken.UserID, token))
	})
	if err != nil {
		return nil, err
	}

	return refreshToken, nil
}

// GetUserTokens returns the user's tokens, newest expiry first
func (s *Storage) GetUserTokens(_ context.Context, userID uuid.UUID) ([]*models.RefreshToken, error) {
	result := make([]*models.RefreshToken, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		tokens, index, err := buckets(tx)
		if err != nil {
			return err
		}

		prefix := userPrefix(userID)
		c := index.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			data := tokens.Get(k[len(prefix):])
			if data == nil {
				continue
			}
			token := &models.RefreshToken{}
			if err := json.Unmarshal(data, token); err != nil {
				return fmt.Errorf("failed to unmarshal refresh token: %w", err)
			}
			result = append(result, token)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpirationDate.After(result[j].ExpirationDate)
	})

	return result, nil
}

// DeleteUserTokens deletes all refresh tokens for a user
func (s *Storage) DeleteUserTokens(_ context.Context, userID uuid.UUID) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		tokens, index, err := buckets(tx)
		if err != nil {
			return err
		}

		prefix := userPrefix(userID)
		var keys [][]byte
		c := index.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, bytes.Clone(k))
		}

		// Удаляем после обхода: bbolt не любит мутации под курсором
		for _, k := range keys {
			token := k[len(prefix):]
			if tokens.Get(token) != nil {
				if err := tokens.Delete(token); err != nil {
					return fmt.Errorf("failed to delete refresh token: %w", err)
				}
				deleted++
			}
			if err := index.Delete(k); err != nil {
				return fmt.Errorf("failed to delete token index: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}

// DeleteExpiredTokens removes all expired tokens
func (s *Storage) DeleteExpiredTokens(_ context.Context) (int, error) {
	now := s.now()
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		tokens, index, err := buckets(tx)
		if err != nil {
			return err
		}

		var expired []*models.RefreshToken
		err = tokens.ForEach(func(_, v []byte) error {
			token := &models.RefreshToken{}
			if err := json.Unmarshal(v, token); err != nil {
				return fmt.Errorf("failed to unmarshal refresh token: %w", err)
			}
			if token.Expired(now) {
				expired = append(expired, token)
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, token := range expired {
			if err := tokens.Delete([]byte(token.Token)); err != nil {
				return fmt.Errorf("failed to delete refresh token: %w", err)
			}
			if err := index.Delete(indexKey(token.UserID, token.Token)); err != nil {
				return fmt.Errorf("failed to delete token index: %w", err)
			}
		}
		deleted = len(expired)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
