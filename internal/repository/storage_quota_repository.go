package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
)

type StorageQuotaRepository struct {
	db *sqlx.DB
}

func NewStorageQuotaRepository(db *sqlx.DB) *StorageQuotaRepository {
	return &StorageQuotaRepository{db: db}
}

func (r *StorageQuotaRepository) Get(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	var quota domain.StorageQuota

	err := r.db.GetContext(ctx, &quota,
		`SELECT * FROM storage_quotas WHERE owner_id = $1`,
		ownerID)

	if err != nil {
		// First touch for this owner: create the row with the default limit.
		if err == sql.ErrNoRows {
			quota = domain.StorageQuota{
				OwnerID:         ownerID,
				TotalBytesLimit: domain.DefaultQuotaBytes,
				UsedBytes:       0,
			}
			if err := r.create(ctx, &quota); err != nil {
				return nil, fmt.Errorf("failed to create quota: %w", err)
			}
			return &quota, nil
		}
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	return &quota, nil
}

func (r *StorageQuotaRepository) create(ctx context.Context, quota *domain.StorageQuota) error {
	query := `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit, used_bytes)
        VALUES ($1, $2, $3)
        ON CONFLICT (owner_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		quota.OwnerID,
		quota.TotalBytesLimit,
		quota.UsedBytes,
	).Scan(&quota.ID, &quota.CreatedAt, &quota.UpdatedAt)
}

// Reserve performs the check-and-increment in one conditional UPDATE. The
// row lock Postgres takes for the UPDATE serializes concurrent reservations
// per owner, so two of them can never both pass on the same headroom.
func (r *StorageQuotaRepository) Reserve(ctx context.Context, ownerID string, bytes int64) error {
	// Ensure the row exists so zero affected rows below can only mean
	// insufficient headroom.
	if _, err := r.Get(ctx, ownerID); err != nil {
		return err
	}

	query := `
        UPDATE storage_quotas
        SET used_bytes = used_bytes + $1,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2
          AND used_bytes + $1 <= total_bytes_limit`

	result, err := r.db.ExecContext(ctx, query, bytes, ownerID)
	if err != nil {
		return fmt.Errorf("failed to reserve space: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return domain.ErrQuotaExceeded
	}

	return nil
}

func (r *StorageQuotaRepository) AddUsed(ctx context.Context, ownerID string, delta int64) error {
	query := `
        UPDATE storage_quotas
        SET used_bytes = GREATEST(0, used_bytes + $1),
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, delta, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update used space: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("quota not found for owner: %s", ownerID)
	}

	return nil
}

func (r *StorageQuotaRepository) SetLimit(ctx context.Context, ownerID string, limit int64) error {
	if _, err := r.Get(ctx, ownerID); err != nil {
		return err
	}

	query := `
        UPDATE storage_quotas
        SET total_bytes_limit = $1,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2`

	result, err := r.db.ExecContext(ctx, query, limit, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update quota limit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("quota not found for owner: %s", ownerID)
	}

	return nil
}
