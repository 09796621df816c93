package sqlstore

import (
	"context"
	"fmt"

	"github.com/FamilySync/Services-Authentication/internal/models"
	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

// GetClaims returns the user's claims in the order they were added
func (s *Storage) GetClaims(ctx context.Context, user *models.User) ([]models.Claim, error) {
	query := s.rebind(`
		SELECT claim_type, claim_value
		FROM user_claims
		WHERE user_id = ?
		ORDER BY id
	`)

	rows, err := s.db.QueryContext(ctx, query, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user claims: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	claims := make([]models.Claim, 0)
	for rows.Next() {
		var c models.Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return claims, nil
}

// AddClaims inserts all claims in one transaction
func (s *Storage) AddClaims(ctx context.Context, user *models.User, claims ...models.Claim) error {
	for _, c := range claims {
		if c.Type == "" {
			return fmt.Errorf("%w: claim type cannot be empty", storage.ErrInvalidClaim)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := s.rebind(`INSERT INTO user_claims (user_id, claim_type, claim_value) VALUES (?, ?, ?)`)
	for _, c := range claims {
		if _, err := tx.ExecContext(ctx, query, user.ID, c.Type, c.Value); err != nil {
			if s.isForeignKeyViolation(err) {
				return storage.ErrUserNotFound
			}
			return fmt.Errorf("failed to insert claim %q: %w", c.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RemoveClaim deletes every claim of the user matching type and value
func (s *Storage) RemoveClaim(ctx context.Context, user *models.User, claim models.Claim) error {
	query := s.rebind(`DELETE FROM user_claims WHERE user_id = ? AND claim_type = ? AND claim_value = ?`)

	if _, err := s.db.ExecContext(ctx, query, user.ID, claim.Type, claim.Value); err != nil {
		return fmt.Errorf("failed to delete claim %q: %w", claim.Type, err)
	}

	return nil
}
