package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore is an in-memory s3.Storage. The hook fields let tests inject
// infrastructure failures for a given key.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	UploadHook func(key string) error
	DeleteHook func(key string) error
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

func (b *BlobStore) Upload(_ context.Context, key string, body io.Reader) error {
	if b.UploadHook != nil {
		if err := b.UploadHook(key); err != nil {
			return err
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	return nil
}

func (b *BlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.blobs[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *BlobStore) Delete(_ context.Context, key string) error {
	if b.DeleteHook != nil {
		if err := b.DeleteHook(key); err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

// Len reports how many blobs are stored.
func (b *BlobStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.blobs)
}

// Has reports whether a blob exists for key.
func (b *BlobStore) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}
