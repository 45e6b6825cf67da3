package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (name, owner_id, parent_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		folder.Name,
		folder.OwnerID,
		folder.ParentID,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	var folder domain.Folder
	err := r.db.GetContext(ctx, &folder,
		`SELECT * FROM folders WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

func (r *FolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64, limit, offset int) ([]domain.Folder, error) {
	folders := []domain.Folder{}

	var err error
	if parentID == nil {
		err = r.db.SelectContext(ctx, &folders, `
            SELECT * FROM folders
            WHERE owner_id = $1 AND parent_id IS NULL
            ORDER BY name, id
            LIMIT $2 OFFSET $3`,
			ownerID, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &folders, `
            SELECT * FROM folders
            WHERE owner_id = $1 AND parent_id = $2
            ORDER BY name, id
            LIMIT $3 OFFSET $4`,
			ownerID, *parentID, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return folders, nil
}

func (r *FolderRepository) Rename(ctx context.Context, id int64, newName string) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE folders
        SET name = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2`,
		newName, id)
	if err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *FolderRepository) SetParent(ctx context.Context, id int64, parentID *int64) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE folders
        SET parent_id = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2`,
		parentID, id)
	if err != nil {
		return fmt.Errorf("failed to move folder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

// NameExists reports whether the owner already has a folder called name
// under parentID, ignoring excludeID (so a rename to the same name passes).
func (r *FolderRepository) NameExists(ctx context.Context, ownerID string, parentID *int64, name string, excludeID int64) (bool, error) {
	var exists bool

	var err error
	if parentID == nil {
		err = r.db.GetContext(ctx, &exists, `
            SELECT EXISTS(
                SELECT 1 FROM folders
                WHERE owner_id = $1 AND parent_id IS NULL AND name = $2 AND id != $3
            )`,
			ownerID, name, excludeID)
	} else {
		err = r.db.GetContext(ctx, &exists, `
            SELECT EXISTS(
                SELECT 1 FROM folders
                WHERE owner_id = $1 AND parent_id = $2 AND name = $3 AND id != $4
            )`,
			ownerID, *parentID, name, excludeID)
	}

	if err != nil {
		return false, fmt.Errorf("failed to check folder existence: %w", err)
	}

	return exists, nil
}
