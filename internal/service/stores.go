package service

import (
	"context"

	"github.com/google/uuid"

	"vaultdrive/internal/domain"
)

// Store interfaces the services operate through. internal/repository holds
// the Postgres implementations, internal/repository/memory the in-memory
// ones used by tests and dev mode.

type QuotaStore interface {
	// Get returns the owner's quota row, creating it with the default limit
	// when the owner has none yet.
	Get(ctx context.Context, ownerID string) (*domain.StorageQuota, error)
	// Reserve atomically checks used+bytes against the limit and increments
	// used_bytes when it fits. Returns domain.ErrQuotaExceeded otherwise,
	// leaving the counter untouched. The check and the increment are a
	// single step per owner; two concurrent calls can never both pass on
	// the same headroom.
	Reserve(ctx context.Context, ownerID string, bytes int64) error
	// AddUsed shifts used_bytes by delta, floored at zero.
	AddUsed(ctx context.Context, ownerID string, delta int64) error
	SetLimit(ctx context.Context, ownerID string, limit int64) error
}

type FolderStore interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id int64) (*domain.Folder, error)
	// ListChildren returns one page of an owner's folders under parentID;
	// nil parentID means the root level.
	ListChildren(ctx context.Context, ownerID string, parentID *int64, limit, offset int) ([]domain.Folder, error)
	Rename(ctx context.Context, id int64, newName string) error
	SetParent(ctx context.Context, id int64, parentID *int64) error
	Delete(ctx context.Context, id int64) error
	NameExists(ctx context.Context, ownerID string, parentID *int64, name string, excludeID int64) (bool, error)
}

type FileStore interface {
	Create(ctx context.Context, file *domain.File) error
	GetByUUID(ctx context.Context, fileUUID uuid.UUID) (*domain.File, error)
	// ListByFolder returns one page of an owner's files in folderID; nil
	// folderID means the root level.
	ListByFolder(ctx context.Context, ownerID string, folderID *int64, limit, offset int) ([]domain.File, error)
	Rename(ctx context.Context, fileUUID uuid.UUID, newName string) error
	SetFolder(ctx context.Context, fileUUID uuid.UUID, folderID *int64) error
	Delete(ctx context.Context, fileUUID uuid.UUID) error
}

type ShareStore interface {
	// Create inserts the share row and marks the file public with its token
	// in one transaction. Returns domain.ErrTokenExists when the token is
	// already taken by any share.
	Create(ctx context.Context, share *domain.Share) error
	GetByToken(ctx context.Context, token string) (*domain.Share, error)
	// DeleteByFile removes the file's share row and clears the file's
	// public flag and token in one transaction. Absent share is a no-op.
	DeleteByFile(ctx context.Context, fileUUID uuid.UUID) error
}
