package memory

import (
	"context"
	"time"

	"vaultdrive/internal/domain"
)

type FolderStore struct {
	s *Stores
}

func (f *FolderStore) Create(_ context.Context, folder *domain.Folder) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	f.s.nextFolderID++
	folder.ID = f.s.nextFolderID
	now := time.Now()
	folder.CreatedAt = now
	folder.UpdatedAt = now

	stored := *folder
	f.s.folders[folder.ID] = &stored
	return nil
}

func (f *FolderStore) GetByID(_ context.Context, id int64) (*domain.Folder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	folder, ok := f.s.folders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *folder
	return &copied, nil
}

func (f *FolderStore) ListChildren(_ context.Context, ownerID string, parentID *int64, limit, offset int) ([]domain.Folder, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	matched := []domain.Folder{}
	for _, folder := range f.s.folders {
		if folder.OwnerID == ownerID && sameParent(folder.ParentID, parentID) {
			matched = append(matched, *folder)
		}
	}
	sortFolders(matched)
	return page(matched, limit, offset), nil
}

func (f *FolderStore) Rename(_ context.Context, id int64, newName string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	folder, ok := f.s.folders[id]
	if !ok {
		return domain.ErrNotFound
	}
	folder.Name = newName
	folder.UpdatedAt = time.Now()
	return nil
}

func (f *FolderStore) SetParent(_ context.Context, id int64, parentID *int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	folder, ok := f.s.folders[id]
	if !ok {
		return domain.ErrNotFound
	}
	folder.ParentID = parentID
	folder.UpdatedAt = time.Now()
	return nil
}

func (f *FolderStore) Delete(_ context.Context, id int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	delete(f.s.folders, id)
	return nil
}

func (f *FolderStore) NameExists(_ context.Context, ownerID string, parentID *int64, name string, excludeID int64) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	for _, folder := range f.s.folders {
		if folder.OwnerID == ownerID && folder.Name == name && folder.ID != excludeID && sameParent(folder.ParentID, parentID) {
			return true, nil
		}
	}
	return false, nil
}
