package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/repository/memory"
)

// testEnv wires all services over one in-memory data set, mirroring the
// wiring in cmd/main.go.
type testEnv struct {
	stores  *memory.Stores
	blob    *memory.BlobStore
	quota   *QuotaService
	cascade *CascadeService
	folders *FolderService
	files   *FileService
	shares  *ShareService
}

func newTestEnv() *testEnv {
	stores := memory.NewStores()
	blob := memory.NewBlobStore()

	quota := NewQuotaService(stores.Quotas())
	cascade := NewCascadeService(stores.Folders(), stores.Files(), stores.Shares(), blob, quota)
	folders := NewFolderService(stores.Folders(), stores.Files(), cascade)
	files := NewFileService(stores.Files(), stores.Folders(), stores.Shares(), blob, quota, cascade)
	shares := NewShareService(stores.Shares(), stores.Files())

	return &testEnv{
		stores:  stores,
		blob:    blob,
		quota:   quota,
		cascade: cascade,
		folders: folders,
		files:   files,
		shares:  shares,
	}
}

func (e *testEnv) setLimit(t *testing.T, ownerID string, limit int64) {
	t.Helper()
	if err := e.stores.Quotas().SetLimit(context.Background(), ownerID, limit); err != nil {
		t.Fatalf("failed to set quota limit: %v", err)
	}
}

func (e *testEnv) usedBytes(t *testing.T, ownerID string) int64 {
	t.Helper()
	quota, err := e.stores.Quotas().Get(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("failed to get quota: %v", err)
	}
	return quota.UsedBytes
}

func (e *testEnv) upload(t *testing.T, ownerID string, folderID *int64, name string, size int) *domain.File {
	t.Helper()
	file, err := e.files.Upload(context.Background(), ownerID, folderID, name,
		"application/octet-stream", int64(size), bytes.NewReader(make([]byte, size)))
	if err != nil {
		t.Fatalf("failed to upload %s: %v", name, err)
	}
	return file
}

func (e *testEnv) mkdir(t *testing.T, ownerID, name string, parentID *int64) *domain.Folder {
	t.Helper()
	folder, err := e.folders.Create(context.Background(), ownerID, name, parentID)
	if err != nil {
		t.Fatalf("failed to create folder %s: %v", name, err)
	}
	return folder
}

func readAll(t *testing.T, r io.ReadCloser) []byte {
	t.Helper()
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return data
}
