package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vaultdrive/internal/domain"
)

func TestCascadeDeleteRemovesSubtree(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 10000)

	// root/ (100) -> sub/ (200) -> deep/ (300), plus an unrelated tree.
	root := env.mkdir(t, "alice", "root", nil)
	sub := env.mkdir(t, "alice", "sub", &root.ID)
	deep := env.mkdir(t, "alice", "deep", &sub.ID)

	env.upload(t, "alice", &root.ID, "a.txt", 100)
	shared := env.upload(t, "alice", &sub.ID, "b.txt", 200)
	deepFile := env.upload(t, "alice", &deep.ID, "c.txt", 300)

	keepFolder := env.mkdir(t, "alice", "keep", nil)
	keepFile := env.upload(t, "alice", &keepFolder.ID, "keep.txt", 50)

	token, err := env.shares.Share(ctx, shared.UUID, "alice")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	if err := env.cascade.DeleteFolder(ctx, root.ID, "alice"); err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}

	// Only the untouched tree's charge remains.
	if got := env.usedBytes(t, "alice"); got != 50 {
		t.Errorf("used bytes: got %d, want 50", got)
	}
	if env.blob.Len() != 1 || !env.blob.Has(keepFile.ContentKey) {
		t.Error("only the untouched tree's blob should remain")
	}
	if env.blob.Has(deepFile.ContentKey) {
		t.Error("deep file's blob should be gone")
	}

	if _, err := env.shares.Resolve(ctx, token); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("share must not survive its file, got %v", err)
	}

	for _, id := range []int64{root.ID, sub.ID, deep.ID} {
		if _, err := env.folders.List(ctx, &id, "alice", 0, 0); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("folder %d should be gone, got %v", id, err)
		}
	}
	if _, err := env.folders.List(ctx, &keepFolder.ID, "alice", 0, 0); err != nil {
		t.Errorf("untouched folder must survive: %v", err)
	}
}

func TestCascadeDeleteForeignFolderDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "bob", 1000)

	folder := env.mkdir(t, "bob", "private", nil)
	env.upload(t, "bob", &folder.ID, "secret.txt", 10)

	if err := env.cascade.DeleteFolder(ctx, folder.ID, "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete must surface as not found, got %v", err)
	}
	if got := env.usedBytes(t, "bob"); got != 10 {
		t.Errorf("used bytes: got %d, want 10", got)
	}
}

func TestCascadeDeleteMissingFolder(t *testing.T) {
	env := newTestEnv()

	if err := env.cascade.DeleteFolder(context.Background(), 9999, "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCascadeDeleteRetryAfterPartialFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 10000)

	root := env.mkdir(t, "alice", "root", nil)
	sub := env.mkdir(t, "alice", "sub", &root.ID)

	env.upload(t, "alice", &root.ID, "a.txt", 100)
	poison := env.upload(t, "alice", &sub.ID, "b.txt", 200)

	// Fail the blob delete for one file, then retry with the fault cleared.
	env.blob.DeleteHook = func(key string) error {
		if key == poison.ContentKey {
			return fmt.Errorf("transient storage error")
		}
		return nil
	}

	if err := env.cascade.DeleteFolder(ctx, root.ID, "alice"); err == nil {
		t.Fatal("first attempt should fail on the injected blob error")
	}

	env.blob.DeleteHook = nil
	if err := env.cascade.DeleteFolder(ctx, root.ID, "alice"); err != nil {
		t.Fatalf("retry should finish the delete: %v", err)
	}

	if got := env.usedBytes(t, "alice"); got != 0 {
		t.Errorf("used bytes after retry: got %d, want 0", got)
	}
	if env.blob.Len() != 0 {
		t.Errorf("blobs after retry: got %d, want 0", env.blob.Len())
	}
	if _, err := env.folders.List(ctx, &root.ID, "alice", 0, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("root should be gone after retry, got %v", err)
	}
}

func TestCascadeDeleteEmptyFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder := env.mkdir(t, "alice", "empty", nil)

	if err := env.cascade.DeleteFolder(ctx, folder.ID, "alice"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := env.folders.List(ctx, &folder.ID, "alice", 0, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("folder should be gone, got %v", err)
	}
}
