package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vaultdrive/internal/domain"
)

type FileStore struct {
	s *Stores
}

func (f *FileStore) Create(_ context.Context, file *domain.File) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	stored := *file
	f.s.files[file.UUID.String()] = &stored
	return nil
}

func (f *FileStore) GetByUUID(_ context.Context, fileUUID uuid.UUID) (*domain.File, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	file, ok := f.s.files[fileUUID.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *file
	return &copied, nil
}

func (f *FileStore) ListByFolder(_ context.Context, ownerID string, folderID *int64, limit, offset int) ([]domain.File, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	matched := []domain.File{}
	for _, file := range f.s.files {
		if file.OwnerID == ownerID && sameParent(file.FolderID, folderID) {
			matched = append(matched, *file)
		}
	}
	sortFiles(matched)
	return page(matched, limit, offset), nil
}

func (f *FileStore) Rename(_ context.Context, fileUUID uuid.UUID, newName string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	file, ok := f.s.files[fileUUID.String()]
	if !ok {
		return domain.ErrNotFound
	}
	file.Name = newName
	file.UpdatedAt = time.Now()
	return nil
}

func (f *FileStore) SetFolder(_ context.Context, fileUUID uuid.UUID, folderID *int64) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	file, ok := f.s.files[fileUUID.String()]
	if !ok {
		return domain.ErrNotFound
	}
	file.FolderID = folderID
	file.UpdatedAt = time.Now()
	return nil
}

func (f *FileStore) Delete(_ context.Context, fileUUID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()

	delete(f.s.files, fileUUID.String())
	return nil
}
