package service

import (
	"context"
	"fmt"
	"log"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/service/s3"
)

// cascadePageSize is the enumeration page size during subtree walks.
const cascadePageSize = 500

// CascadeService removes a folder together with everything beneath it:
// shares, blobs, quota charges, file records, then the folder records
// deepest first. There is no rollback; the sequence is ordered so that any
// interruption leaves files either fully alive and charged or fully gone,
// and a retried call simply finds less to do.
type CascadeService struct {
	folderStore FolderStore
	fileStore   FileStore
	shareStore  ShareStore
	blob        s3.Storage
	quota       *QuotaService

	locks *ownerLocks
}

func NewCascadeService(
	folderStore FolderStore,
	fileStore FileStore,
	shareStore ShareStore,
	blob s3.Storage,
	quota *QuotaService,
) *CascadeService {
	return &CascadeService{
		folderStore: folderStore,
		fileStore:   fileStore,
		shareStore:  shareStore,
		blob:        blob,
		quota:       quota,
		locks:       newOwnerLocks(),
	}
}

// DeleteFolder removes folderID and its whole subtree. Safe to re-invoke
// after a partial failure: already-deleted children are absent from
// re-enumeration.
func (s *CascadeService) DeleteFolder(ctx context.Context, folderID int64, ownerID string) error {
	folder, err := s.folderStore.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.OwnerID != ownerID {
		return domain.ErrNotFound
	}

	unlock := s.locks.Lock(ownerID)
	defer unlock()

	// BFS from the target; the visit order doubles as a topological order,
	// so deleting folders in reverse always removes children before their
	// parent.
	order, err := s.collectSubtree(ctx, folder)
	if err != nil {
		return err
	}

	for _, id := range order {
		if err := s.deleteFiles(ctx, ownerID, id); err != nil {
			log.Printf("[CascadeService] partial delete of folder %d interrupted: %v", folderID, err)
			return fmt.Errorf("cascade delete interrupted, retry to finish: %w", err)
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		if err := s.folderStore.Delete(ctx, order[i]); err != nil {
			log.Printf("[CascadeService] partial delete of folder %d interrupted: %v", folderID, err)
			return fmt.Errorf("cascade delete interrupted, retry to finish: %w", err)
		}
	}

	return nil
}

// collectSubtree returns the folder ids of the subtree rooted at folder, in
// BFS order starting with the root itself.
func (s *CascadeService) collectSubtree(ctx context.Context, folder *domain.Folder) ([]int64, error) {
	order := []int64{folder.ID}

	for i := 0; i < len(order); i++ {
		parentID := order[i]
		offset := 0
		for {
			children, err := s.folderStore.ListChildren(ctx, folder.OwnerID, &parentID, cascadePageSize, offset)
			if err != nil {
				return nil, fmt.Errorf("failed to enumerate subtree: %w", err)
			}
			for _, child := range children {
				order = append(order, child.ID)
			}
			if len(children) < cascadePageSize {
				break
			}
			offset += len(children)
		}
	}

	return order, nil
}

// deleteFiles removes every file directly inside folderID in the same
// order as a single file delete: share, blob, quota, record.
func (s *CascadeService) deleteFiles(ctx context.Context, ownerID string, folderID int64) error {
	for {
		// Always page from offset zero: each iteration deletes what it
		// listed, so the next page has shifted down.
		files, err := s.fileStore.ListByFolder(ctx, ownerID, &folderID, cascadePageSize, 0)
		if err != nil {
			return fmt.Errorf("failed to list files: %w", err)
		}
		if len(files) == 0 {
			return nil
		}

		for _, file := range files {
			if file.IsPublic {
				if err := s.shareStore.DeleteByFile(ctx, file.UUID); err != nil {
					return fmt.Errorf("failed to revoke share for %s: %w", file.UUID, err)
				}
			}
			if err := s.blob.Delete(ctx, file.ContentKey); err != nil {
				return fmt.Errorf("failed to delete blob for %s: %w", file.UUID, err)
			}
			if err := s.quota.Free(ctx, ownerID, file.SizeBytes); err != nil {
				return err
			}
			if err := s.fileStore.Delete(ctx, file.UUID); err != nil {
				return fmt.Errorf("failed to delete record for %s: %w", file.UUID, err)
			}
		}

		if len(files) < cascadePageSize {
			return nil
		}
	}
}
