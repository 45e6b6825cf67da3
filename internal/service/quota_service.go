package service

import (
	"context"
	"fmt"
	"sync"

	"vaultdrive/internal/domain"
)

// QuotaService is the ledger for per-owner storage accounting. Every byte
// entering the system is reserved here before it is written anywhere, and
// every byte leaving is freed here. used_bytes therefore equals the sum of
// the owner's live file sizes whenever no operation is in flight.
type QuotaService struct {
	quotaStore QuotaStore
}

func NewQuotaService(quotaStore QuotaStore) *QuotaService {
	return &QuotaService{quotaStore: quotaStore}
}

// Reservation is a provisional charge taken by Reserve. Exactly one of
// Commit or Release must follow; a second call of either is an internal
// bug and panics.
type Reservation struct {
	ownerID string
	bytes   int64

	mu       sync.Mutex
	consumed bool
}

func (r *Reservation) consume(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		panic(fmt.Sprintf("quota: %s of already-consumed reservation (owner=%s, bytes=%d)", op, r.ownerID, r.bytes))
	}
	r.consumed = true
}

func (r *Reservation) Bytes() int64 { return r.bytes }

// Reserve charges bytes against the owner's quota. The underlying store
// performs the check-and-increment as one atomic step, so concurrent
// reservations can never overcommit. Returns domain.ErrQuotaExceeded when
// the owner lacks headroom.
func (s *QuotaService) Reserve(ctx context.Context, ownerID string, bytes int64) (*Reservation, error) {
	if bytes < 0 {
		return nil, fmt.Errorf("reservation size cannot be negative")
	}

	if err := s.quotaStore.Reserve(ctx, ownerID, bytes); err != nil {
		return nil, err
	}

	return &Reservation{ownerID: ownerID, bytes: bytes}, nil
}

// Commit finalizes a reservation. The counter was already incremented by
// Reserve; this only consumes the handle.
func (s *QuotaService) Commit(res *Reservation) {
	res.consume("commit")
}

// Release returns a reservation's bytes to the owner. Used when an upload
// fails after reserving but before the file record exists.
func (s *QuotaService) Release(ctx context.Context, res *Reservation) error {
	res.consume("release")

	if err := s.quotaStore.AddUsed(ctx, res.ownerID, -res.bytes); err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}

// Free unconditionally returns bytes on file deletion. Not reservation
// gated: the bytes were committed long ago.
func (s *QuotaService) Free(ctx context.Context, ownerID string, bytes int64) error {
	if err := s.quotaStore.AddUsed(ctx, ownerID, -bytes); err != nil {
		return fmt.Errorf("failed to free quota: %w", err)
	}
	return nil
}

func (s *QuotaService) GetQuotaInfo(ctx context.Context, ownerID string) (*domain.QuotaInfo, error) {
	quota, err := s.quotaStore.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	// A zero limit would turn the percentage into NaN, which json cannot
	// encode.
	var percent float64
	if quota.TotalBytesLimit > 0 {
		percent = float64(quota.UsedBytes) / float64(quota.TotalBytesLimit) * 100
	}

	return &domain.QuotaInfo{
		TotalSpace:     quota.TotalBytesLimit,
		UsedSpace:      quota.UsedBytes,
		AvailableSpace: quota.TotalBytesLimit - quota.UsedBytes,
		UsagePercent:   percent,
	}, nil
}

func (s *QuotaService) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	if newLimit < 0 {
		return fmt.Errorf("new quota limit cannot be negative")
	}
	return s.quotaStore.SetLimit(ctx, ownerID, newLimit)
}
