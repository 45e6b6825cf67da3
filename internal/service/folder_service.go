package service

import (
	"context"
	"fmt"

	"vaultdrive/internal/domain"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// FolderService owns folder metadata and the parent/child relationships.
// Structural mutations for one owner are serialized through the cascade
// service's per-owner lock so a move can never race a subtree delete.
type FolderService struct {
	folderStore FolderStore
	fileStore   FileStore
	cascade     *CascadeService
}

func NewFolderService(folderStore FolderStore, fileStore FileStore, cascade *CascadeService) *FolderService {
	return &FolderService{
		folderStore: folderStore,
		fileStore:   fileStore,
		cascade:     cascade,
	}
}

// getOwned loads a folder and verifies ownership, folding foreign folders
// into not-found.
func (s *FolderService) getOwned(ctx context.Context, folderID int64, ownerID string) (*domain.Folder, error) {
	folder, err := s.folderStore.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return folder, nil
}

// Create adds a folder under parentID, or at the root level when parentID
// is nil. A new folder has no children, so no cycle check is needed here.
func (s *FolderService) Create(ctx context.Context, ownerID, name string, parentID *int64) (*domain.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("folder name is required")
	}

	unlock := s.cascade.locks.Lock(ownerID)
	defer unlock()

	if parentID != nil {
		if _, err := s.getOwned(ctx, *parentID, ownerID); err != nil {
			return nil, fmt.Errorf("failed to resolve parent folder: %w", err)
		}
	}

	exists, err := s.folderStore.NameExists(ctx, ownerID, parentID, name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check folder existence: %w", err)
	}
	if exists {
		return nil, domain.ErrNameConflict
	}

	folder := &domain.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}

	if err := s.folderStore.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	return folder, nil
}

// Rename changes a folder's name only.
func (s *FolderService) Rename(ctx context.Context, folderID int64, ownerID, newName string) error {
	if newName == "" {
		return fmt.Errorf("new name is required")
	}

	folder, err := s.getOwned(ctx, folderID, ownerID)
	if err != nil {
		return err
	}

	exists, err := s.folderStore.NameExists(ctx, ownerID, folder.ParentID, newName, folderID)
	if err != nil {
		return fmt.Errorf("failed to check folder existence: %w", err)
	}
	if exists {
		return domain.ErrNameConflict
	}

	return s.folderStore.Rename(ctx, folderID, newName)
}

// Move reparents a folder. The target must belong to the same owner and
// must not be the folder itself or any of its descendants; that walk is the
// only place a cycle could enter the tree.
func (s *FolderService) Move(ctx context.Context, folderID int64, ownerID string, newParentID *int64) error {
	unlock := s.cascade.locks.Lock(ownerID)
	defer unlock()

	folder, err := s.getOwned(ctx, folderID, ownerID)
	if err != nil {
		return err
	}

	if newParentID != nil {
		if *newParentID == folderID {
			return domain.ErrCycleDetected
		}

		newParent, err := s.getOwned(ctx, *newParentID, ownerID)
		if err != nil {
			return fmt.Errorf("failed to resolve target folder: %w", err)
		}

		// Walk the target's ancestor chain up to root; finding folderID
		// means the target sits inside the folder being moved.
		if err := s.checkAncestors(ctx, newParent, folderID); err != nil {
			return err
		}
	}

	exists, err := s.folderStore.NameExists(ctx, ownerID, newParentID, folder.Name, folderID)
	if err != nil {
		return fmt.Errorf("failed to check folder existence: %w", err)
	}
	if exists {
		return domain.ErrNameConflict
	}

	return s.folderStore.SetParent(ctx, folderID, newParentID)
}

func (s *FolderService) checkAncestors(ctx context.Context, start *domain.Folder, forbiddenID int64) error {
	current := start
	for current.ParentID != nil {
		if *current.ParentID == forbiddenID {
			return domain.ErrCycleDetected
		}
		parent, err := s.folderStore.GetByID(ctx, *current.ParentID)
		if err != nil {
			return fmt.Errorf("failed to walk ancestor chain: %w", err)
		}
		current = parent
	}
	return nil
}

// List returns one page of the subfolders and files under folderID, or the
// owner's root level when folderID is nil.
func (s *FolderService) List(ctx context.Context, folderID *int64, ownerID string, limit, offset int) (*domain.FolderContent, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var folder *domain.Folder
	if folderID != nil {
		var err error
		folder, err = s.getOwned(ctx, *folderID, ownerID)
		if err != nil {
			return nil, err
		}
	}

	folders, err := s.folderStore.ListChildren(ctx, ownerID, folderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list subfolders: %w", err)
	}

	files, err := s.fileStore.ListByFolder(ctx, ownerID, folderID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return &domain.FolderContent{
		Folder:  folder,
		Folders: folders,
		Files:   files,
	}, nil
}

// Delete removes the folder and its whole subtree. Always routed through
// the cascade service; folder records are never deleted directly.
func (s *FolderService) Delete(ctx context.Context, folderID int64, ownerID string) error {
	return s.cascade.DeleteFolder(ctx, folderID, ownerID)
}
