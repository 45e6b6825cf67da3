package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/service/s3"
)

const maxFileSize = 100 * 1024 * 1024 // 100MB

// FileService owns file metadata and orchestrates uploads across the quota
// ledger and the blob store. Mutations take the same per-owner lock as the
// cascade service, so a file delete or move can never interleave with a
// subtree delete covering the same rows.
type FileService struct {
	fileStore   FileStore
	folderStore FolderStore
	shareStore  ShareStore
	blob        s3.Storage
	quota       *QuotaService
	cascade     *CascadeService
}

func NewFileService(
	fileStore FileStore,
	folderStore FolderStore,
	shareStore ShareStore,
	blob s3.Storage,
	quota *QuotaService,
	cascade *CascadeService,
) *FileService {
	return &FileService{
		fileStore:   fileStore,
		folderStore: folderStore,
		shareStore:  shareStore,
		blob:        blob,
		quota:       quota,
		cascade:     cascade,
	}
}

// resolveFolder checks that folderID (when set) exists and belongs to
// ownerID. Foreign folders surface as not-found so existence never leaks.
func (s *FileService) resolveFolder(ctx context.Context, folderID *int64, ownerID string) error {
	if folderID == nil {
		return nil
	}
	folder, err := s.folderStore.GetByID(ctx, *folderID)
	if err != nil {
		return err
	}
	if folder.OwnerID != ownerID {
		return domain.ErrNotFound
	}
	return nil
}

// Upload stores a new file. The order is fixed: reserve quota, write the
// blob, create the record, commit. A blob failure releases the reservation
// and leaves no record, so used_bytes never undercounts a live file and
// never stays inflated for a dead one.
func (s *FileService) Upload(
	ctx context.Context,
	ownerID string,
	folderID *int64,
	name string,
	contentType string,
	sizeBytes int64,
	content io.Reader,
) (*domain.File, error) {
	if name == "" || content == nil || ownerID == "" {
		return nil, fmt.Errorf("missing required upload parameters")
	}
	if sizeBytes > maxFileSize {
		return nil, fmt.Errorf("file size exceeds maximum of %d bytes", maxFileSize)
	}

	if err := s.resolveFolder(ctx, folderID, ownerID); err != nil {
		return nil, fmt.Errorf("failed to resolve target folder: %w", err)
	}

	res, err := s.quota.Reserve(ctx, ownerID, sizeBytes)
	if err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	fileUUID := uuid.New()
	contentKey := fmt.Sprintf("drive_files/%s/%s", ownerID, fileUUID.String())

	if err := s.blob.Upload(ctx, contentKey, content); err != nil {
		if relErr := s.quota.Release(ctx, res); relErr != nil {
			log.Printf("[FileService] failed to release reservation after blob error: %v", relErr)
		}
		return nil, fmt.Errorf("failed to write content: %w", err)
	}

	// The blob write runs outside the owner lock; the record insert must
	// not. Re-check the target folder under the lock, since a cascade
	// delete may have removed it while the content was uploading.
	unlock := s.cascade.locks.Lock(ownerID)
	defer unlock()

	if err := s.resolveFolder(ctx, folderID, ownerID); err != nil {
		if delErr := s.blob.Delete(ctx, contentKey); delErr != nil {
			log.Printf("[FileService] failed to delete blob after folder check: %v", delErr)
		}
		if relErr := s.quota.Release(ctx, res); relErr != nil {
			log.Printf("[FileService] failed to release reservation after folder check: %v", relErr)
		}
		return nil, fmt.Errorf("failed to resolve target folder: %w", err)
	}

	file := &domain.File{
		UUID:       fileUUID,
		Name:       filepath.Clean(name),
		MIMEType:   contentType,
		SizeBytes:  sizeBytes,
		FolderID:   folderID,
		OwnerID:    ownerID,
		ContentKey: contentKey,
	}

	if err := s.fileStore.Create(ctx, file); err != nil {
		if delErr := s.blob.Delete(ctx, contentKey); delErr != nil {
			log.Printf("[FileService] failed to delete blob after db error: %v", delErr)
		}
		if relErr := s.quota.Release(ctx, res); relErr != nil {
			log.Printf("[FileService] failed to release reservation after db error: %v", relErr)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.quota.Commit(res)

	return file, nil
}

// getOwned loads a file and verifies ownership, folding foreign files into
// not-found.
func (s *FileService) getOwned(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error) {
	file, err := s.fileStore.GetByUUID(ctx, fileUUID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

func (s *FileService) Download(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.FileDownload, error) {
	file, err := s.getOwned(ctx, fileUUID, ownerID)
	if err != nil {
		return nil, err
	}

	body, err := s.blob.Get(ctx, file.ContentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	return &domain.FileDownload{File: file, Body: body}, nil
}

// DownloadByFile reads a file's content without an ownership check. Used by
// the public share path after the token has been resolved.
func (s *FileService) DownloadByFile(ctx context.Context, file *domain.File) (*domain.FileDownload, error) {
	body, err := s.blob.Get(ctx, file.ContentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return &domain.FileDownload{File: file, Body: body}, nil
}

// Delete removes a file. Share first, then blob, then quota, then record:
// a crash mid-way leaves the quota still charged for a possibly-orphaned
// blob, never an uncharged live file. The owner lock serializes this
// against other deletes of the same file and against cascade deletes, so
// the quota is freed exactly once.
func (s *FileService) Delete(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	unlock := s.cascade.locks.Lock(ownerID)
	defer unlock()

	file, err := s.getOwned(ctx, fileUUID, ownerID)
	if err != nil {
		return err
	}

	if file.IsPublic {
		if err := s.shareStore.DeleteByFile(ctx, file.UUID); err != nil {
			return fmt.Errorf("failed to revoke share: %w", err)
		}
	}

	if err := s.blob.Delete(ctx, file.ContentKey); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	if err := s.quota.Free(ctx, file.OwnerID, file.SizeBytes); err != nil {
		return err
	}

	if err := s.fileStore.Delete(ctx, file.UUID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	return nil
}

// Rename changes the filename only. No quota effect.
func (s *FileService) Rename(ctx context.Context, fileUUID uuid.UUID, ownerID, newName string) error {
	if newName == "" {
		return fmt.Errorf("new name is required")
	}

	if _, err := s.getOwned(ctx, fileUUID, ownerID); err != nil {
		return err
	}

	return s.fileStore.Rename(ctx, fileUUID, filepath.Clean(newName))
}

// Move reparents a file. The target folder must belong to the same owner;
// nil moves the file to the root level. No quota effect. Holds the owner
// lock so the file cannot land in a folder mid-cascade.
func (s *FileService) Move(ctx context.Context, fileUUID uuid.UUID, ownerID string, newFolderID *int64) error {
	unlock := s.cascade.locks.Lock(ownerID)
	defer unlock()

	if _, err := s.getOwned(ctx, fileUUID, ownerID); err != nil {
		return err
	}

	if err := s.resolveFolder(ctx, newFolderID, ownerID); err != nil {
		return fmt.Errorf("failed to resolve target folder: %w", err)
	}

	return s.fileStore.SetFolder(ctx, fileUUID, newFolderID)
}

// GetFileInfo returns an owned file's metadata.
func (s *FileService) GetFileInfo(ctx context.Context, fileUUID uuid.UUID, ownerID string) (*domain.File, error) {
	return s.getOwned(ctx, fileUUID, ownerID)
}
