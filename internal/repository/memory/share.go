package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vaultdrive/internal/domain"
)

type ShareStore struct {
	s *Stores
}

func (sh *ShareStore) Create(_ context.Context, share *domain.Share) error {
	sh.s.mu.Lock()
	defer sh.s.mu.Unlock()

	if _, taken := sh.s.sharesByTok[share.Token]; taken {
		return domain.ErrTokenExists
	}
	// One share per file, like the unique index on shares.file_uuid.
	if _, taken := sh.s.sharesByFile[share.FileUUID.String()]; taken {
		return domain.ErrFileShared
	}

	file, ok := sh.s.files[share.FileUUID.String()]
	if !ok {
		return domain.ErrNotFound
	}

	share.CreatedAt = time.Now()
	stored := *share
	sh.s.sharesByTok[share.Token] = &stored
	sh.s.sharesByFile[share.FileUUID.String()] = &stored

	token := share.Token
	file.IsPublic = true
	file.ShareToken = &token
	file.UpdatedAt = time.Now()
	return nil
}

func (sh *ShareStore) GetByToken(_ context.Context, token string) (*domain.Share, error) {
	sh.s.mu.Lock()
	defer sh.s.mu.Unlock()

	share, ok := sh.s.sharesByTok[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *share
	return &copied, nil
}

func (sh *ShareStore) DeleteByFile(_ context.Context, fileUUID uuid.UUID) error {
	sh.s.mu.Lock()
	defer sh.s.mu.Unlock()

	if share, ok := sh.s.sharesByFile[fileUUID.String()]; ok {
		delete(sh.s.sharesByTok, share.Token)
		delete(sh.s.sharesByFile, fileUUID.String())
	}

	if file, ok := sh.s.files[fileUUID.String()]; ok {
		file.IsPublic = false
		file.ShareToken = nil
		file.UpdatedAt = time.Now()
	}
	return nil
}
