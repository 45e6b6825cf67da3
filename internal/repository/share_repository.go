package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"vaultdrive/internal/domain"
)

// pqUniqueViolation is the Postgres error code for a unique constraint hit.
const pqUniqueViolation = "23505"

type ShareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

// Create inserts the share and flips the file to public in one transaction,
// so a token never exists without its file-side marker or vice versa. A
// unique-index hit on the token surfaces as domain.ErrTokenExists for the
// service's retry loop.
func (r *ShareRepository) Create(ctx context.Context, share *domain.Share) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO shares (id, token, file_uuid, owner_id)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`

	err = tx.QueryRowContext(ctx, query,
		share.ID,
		share.Token,
		share.FileUUID,
		share.OwnerID,
	).Scan(&share.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			// Two distinct unique constraints can fire here: a token
			// collision (retryable with a fresh token) or a racing share
			// of the same file (the live token should be returned).
			if pqErr.Constraint == "shares_file_uuid_key" {
				return domain.ErrFileShared
			}
			return domain.ErrTokenExists
		}
		return fmt.Errorf("failed to create share: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
        UPDATE files
        SET is_public = TRUE, share_token = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2`,
		share.Token, share.FileUUID)
	if err != nil {
		return fmt.Errorf("failed to mark file as public: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*domain.Share, error) {
	var share domain.Share
	err := r.db.GetContext(ctx, &share,
		`SELECT * FROM shares WHERE token = $1`, token)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return &share, nil
}

// DeleteByFile revokes the file's share and clears its public marker
// atomically. Deleting an unshared file's share is a no-op.
func (r *ShareRepository) DeleteByFile(ctx context.Context, fileUUID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shares WHERE file_uuid = $1`, fileUUID); err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE files
        SET is_public = FALSE, share_token = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $1`,
		fileUUID); err != nil {
		return fmt.Errorf("failed to clear file share state: %w", err)
	}

	return tx.Commit()
}
