package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

// CreateRefreshToken generates and stores a new refresh token for the user
func (s *Storage) CreateRefreshToken(ctx context.Context, userID uuid.UUID) (*models.RefreshToken, error) {
	token, err := storage.NewRefreshToken(userID, s.refreshTTL, s.now())
	if err != nil {
		return nil, err
	}

	query := s.rebind(`
		INSERT INTO refresh_tokens (id, user_id, token, expiration_date)
		VALUES (?, ?, ?, ?)
	`)

	_, err = s.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Token,
		token.ExpirationDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return token, nil
}

// ConsumeRefreshToken reads and deletes the token in one transaction.
// The delete's affected row count decides the winner when two callers race
// for the same token.
func (s *Storage) ConsumeRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	selectQuery := s.rebind(`
		SELECT id, user_id, token, expiration_date
		FROM refresh_tokens
		WHERE token = ?
	`)

	refreshToken := &models.RefreshToken{}
	err = tx.QueryRowContext(ctx, selectQuery, token).Scan(
		&refreshToken.ID,
		&refreshToken.UserID,
		&refreshToken.Token,
		&refreshToken.ExpirationDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM refresh_tokens WHERE token = ?`), token)
	if err != nil {
		return nil, fmt.Errorf("failed to delete refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	// Другой запрос успел удалить токен раньше нас
	if rows == 0 {
		return nil, storage.ErrTokenNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return refreshToken, nil
}

// GetUserTokens retrieves all refresh tokens for a user
func (s *Storage) GetUserTokens(ctx context.Context, userID uuid.UUID) ([]*models.RefreshToken, error) {
	query := s.rebind(`
		SELECT id, user_id, token, expiration_date
		FROM refresh_tokens
		WHERE user_id = ?
		ORDER BY expiration_date DESC
	`)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tokens := make([]*models.RefreshToken, 0)

	for rows.Next() {
		token := &models.RefreshToken{}
		if err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.Token,
			&token.ExpirationDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tokens, nil
}

// DeleteUserTokens deletes all refresh tokens for a user
func (s *Storage) DeleteUserTokens(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM refresh_tokens WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

// DeleteExpiredTokens removes all expired tokens
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	query := s.rebind(`DELETE FROM refresh_tokens WHERE expiration_date <= ?`)

	result, err := s.db.ExecContext(ctx, query, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
