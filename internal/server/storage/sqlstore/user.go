package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/FamilySync/Services-Authentication/internal/crypto"
	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
	"github.com/FamilySync/Services-Authentication/internal/validation"
)

const userColumns = `id, username, email, password_hash, created_at`

// CreateUser creates a new user. An empty password creates a password-less account.
func (s *Storage) CreateUser(ctx context.Context, user *models.User, password string) error {
	var passwordHash sql.NullString
	if password != "" {
		if err := validation.ValidatePassword(password); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidPassword, err)
		}
		hash, err := crypto.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = sql.NullString{String: hash, Valid: true}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}

	query := s.rebind(`
		INSERT INTO users (id, username, normalized_username, email, normalized_email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		normalize(user.Username),
		user.Email,
		normalize(user.Email),
		passwordHash,
		user.CreatedAt,
	)
	if err != nil {
		// Проверяем на duplicate username/email
		if s.isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	user.PasswordHash = passwordHash.String

	return nil
}

// FindByEmail retrieves user by email, case-insensitively
func (s *Storage) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE normalized_email = ?`)
	return s.scanUser(s.db.QueryRowContext(ctx, query, normalize(email)))
}

// FindByID retrieves user by ID
func (s *Storage) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// VerifyPassword checks the password against the user's stored hash
func (s *Storage) VerifyPassword(_ context.Context, user *models.User, password string) (bool, error) {
	if !user.HasPassword() || password == "" {
		return false, nil
	}

	ok, err := crypto.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}

	return ok, nil
}

// DeleteUser deletes the user together with its claims
func (s *Storage) DeleteUser(ctx context.Context, user *models.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM user_claims WHERE user_id = ?`), user.ID); err != nil {
		return fmt.Errorf("failed to delete user claims: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = ?`), user.ID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var passwordHash sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&passwordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}

	return user, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
