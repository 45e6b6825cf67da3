package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
)

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	query := `
        INSERT INTO files (uuid, name, mime_type, size_bytes, folder_id, owner_id, content_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		file.UUID,
		file.Name,
		file.MIMEType,
		file.SizeBytes,
		file.FolderID,
		file.OwnerID,
		file.ContentKey,
	).Scan(&file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	return nil
}

func (r *FileRepository) GetByUUID(ctx context.Context, fileUUID uuid.UUID) (*domain.File, error) {
	var file domain.File
	err := r.db.GetContext(ctx, &file,
		`SELECT * FROM files WHERE uuid = $1`, fileUUID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

func (r *FileRepository) ListByFolder(ctx context.Context, ownerID string, folderID *int64, limit, offset int) ([]domain.File, error) {
	files := []domain.File{}

	var err error
	if folderID == nil {
		err = r.db.SelectContext(ctx, &files, `
            SELECT * FROM files
            WHERE owner_id = $1 AND folder_id IS NULL
            ORDER BY name, uuid
            LIMIT $2 OFFSET $3`,
			ownerID, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &files, `
            SELECT * FROM files
            WHERE owner_id = $1 AND folder_id = $2
            ORDER BY name, uuid
            LIMIT $3 OFFSET $4`,
			ownerID, *folderID, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

func (r *FileRepository) Rename(ctx context.Context, fileUUID uuid.UUID, newName string) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE files
        SET name = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2`,
		newName, fileUUID)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
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

func (r *FileRepository) SetFolder(ctx context.Context, fileUUID uuid.UUID, folderID *int64) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE files
        SET folder_id = $1, updated_at = CURRENT_TIMESTAMP
        WHERE uuid = $2`,
		folderID, fileUUID)
	if err != nil {
		return fmt.Errorf("failed to move file: %w", err)
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

func (r *FileRepository) Delete(ctx context.Context, fileUUID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE uuid = $1`, fileUUID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
