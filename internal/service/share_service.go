package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"vaultdrive/internal/domain"
)

// tokenRetries bounds the collision loop. Tokens come from a 256-bit random
// space, so more than one retry means something is badly wrong.
const tokenRetries = 5

// ShareService issues and revokes public tokens for individual files.
type ShareService struct {
	shareStore ShareStore
	fileStore  FileStore
}

func NewShareService(shareStore ShareStore, fileStore FileStore) *ShareService {
	return &ShareService{
		shareStore: shareStore,
		fileStore:  fileStore,
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Share makes a file publicly reachable and returns its token. Idempotent:
// a file that is already shared gets its existing token back.
func (s *ShareService) Share(ctx context.Context, fileUUID uuid.UUID, ownerID string) (string, error) {
	file, err := s.fileStore.GetByUUID(ctx, fileUUID)
	if err != nil {
		return "", err
	}
	if file.OwnerID != ownerID {
		return "", domain.ErrNotFound
	}

	if file.IsPublic && file.ShareToken != nil {
		return *file.ShareToken, nil
	}

	for attempt := 0; attempt < tokenRetries; attempt++ {
		token, err := generateToken()
		if err != nil {
			return "", fmt.Errorf("failed to generate token: %w", err)
		}

		share := &domain.Share{
			ID:       uuid.New(),
			Token:    token,
			FileUUID: file.UUID,
			OwnerID:  ownerID,
		}

		err = s.shareStore.Create(ctx, share)
		if err == nil {
			return token, nil
		}
		if errors.Is(err, domain.ErrTokenExists) {
			log.Printf("[ShareService] token collision for file %s, retrying", file.UUID)
			continue
		}
		if errors.Is(err, domain.ErrFileShared) {
			// A concurrent Share won the race; its token is the live one.
			current, getErr := s.fileStore.GetByUUID(ctx, fileUUID)
			if getErr != nil {
				return "", getErr
			}
			if current.ShareToken != nil {
				return *current.ShareToken, nil
			}
			return "", fmt.Errorf("failed to create share: %w", err)
		}
		return "", fmt.Errorf("failed to create share: %w", err)
	}

	return "", fmt.Errorf("failed to create share: token space exhausted after %d attempts", tokenRetries)
}

// Unshare revokes a file's public token. The token stops resolving the
// moment this returns; repeated calls are no-ops.
func (s *ShareService) Unshare(ctx context.Context, fileUUID uuid.UUID, ownerID string) error {
	file, err := s.fileStore.GetByUUID(ctx, fileUUID)
	if err != nil {
		return err
	}
	if file.OwnerID != ownerID {
		return domain.ErrNotFound
	}

	return s.shareStore.DeleteByFile(ctx, file.UUID)
}

// Resolve maps a public token to its file. The only entry point with no
// owner identity; revoked and unknown tokens are indistinguishable.
func (s *ShareService) Resolve(ctx context.Context, token string) (*domain.File, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}

	share, err := s.shareStore.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return s.fileStore.GetByUUID(ctx, share.FileUUID)
}
