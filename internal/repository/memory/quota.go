package memory

import (
	"context"
	"time"

	"vaultdrive/internal/domain"
)

type QuotaStore struct {
	s *Stores
}

func (q *QuotaStore) getLocked(ownerID string) *domain.StorageQuota {
	quota, ok := q.s.quotas[ownerID]
	if !ok {
		q.s.nextQuotaID++
		now := time.Now()
		quota = &domain.StorageQuota{
			ID:              q.s.nextQuotaID,
			OwnerID:         ownerID,
			TotalBytesLimit: domain.DefaultQuotaBytes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		q.s.quotas[ownerID] = quota
	}
	return quota
}

func (q *QuotaStore) Get(_ context.Context, ownerID string) (*domain.StorageQuota, error) {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	quota := *q.getLocked(ownerID)
	return &quota, nil
}

// Reserve holds the store lock across the check and the increment, the
// in-memory stand-in for the Postgres row lock.
func (q *QuotaStore) Reserve(_ context.Context, ownerID string, bytes int64) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	quota := q.getLocked(ownerID)
	if quota.UsedBytes+bytes > quota.TotalBytesLimit {
		return domain.ErrQuotaExceeded
	}
	quota.UsedBytes += bytes
	quota.UpdatedAt = time.Now()
	return nil
}

func (q *QuotaStore) AddUsed(_ context.Context, ownerID string, delta int64) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	quota := q.getLocked(ownerID)
	quota.UsedBytes += delta
	if quota.UsedBytes < 0 {
		quota.UsedBytes = 0
	}
	quota.UpdatedAt = time.Now()
	return nil
}

func (q *QuotaStore) SetLimit(_ context.Context, ownerID string, limit int64) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	quota := q.getLocked(ownerID)
	quota.TotalBytesLimit = limit
	quota.UpdatedAt = time.Now()
	return nil
}
