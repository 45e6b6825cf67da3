package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"vaultdrive/internal/domain"
)

func TestUploadAndDownload(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	content := []byte("hello drive")
	file, err := env.files.Upload(ctx, "alice", nil, "notes.txt", "text/plain",
		int64(len(content)), bytes.NewReader(content))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if file.OwnerID != "alice" {
		t.Errorf("owner: got %q, want %q", file.OwnerID, "alice")
	}
	if file.SizeBytes != int64(len(content)) {
		t.Errorf("size: got %d, want %d", file.SizeBytes, len(content))
	}
	if file.ContentKey == "" {
		t.Error("content key should be set")
	}
	if got := env.usedBytes(t, "alice"); got != int64(len(content)) {
		t.Errorf("used bytes: got %d, want %d", got, len(content))
	}

	download, err := env.files.Download(ctx, file.UUID, "alice")
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if got := readAll(t, download.Body); !bytes.Equal(got, content) {
		t.Errorf("content mismatch: got %q, want %q", got, content)
	}
}

func TestUploadQuotaExceededTouchesNothing(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 10)

	_, err := env.files.Upload(ctx, "alice", nil, "big.bin", "",
		100, bytes.NewReader(make([]byte, 100)))
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	if env.blob.Len() != 0 {
		t.Error("no blob may be written when the reservation fails")
	}
	if got := env.usedBytes(t, "alice"); got != 0 {
		t.Errorf("used bytes: got %d, want 0", got)
	}
}

func TestUploadBlobFailureReleasesReservation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	env.blob.UploadHook = func(string) error {
		return fmt.Errorf("connection reset")
	}

	_, err := env.files.Upload(ctx, "alice", nil, "doc.pdf", "",
		100, bytes.NewReader(make([]byte, 100)))
	if err == nil {
		t.Fatal("expected upload to fail")
	}

	if got := env.usedBytes(t, "alice"); got != 0 {
		t.Errorf("reservation must be released on blob failure: used %d, want 0", got)
	}
	if env.blob.Len() != 0 {
		t.Error("failed upload must leave no blob behind")
	}
}

func TestUploadIntoForeignFolderDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)
	env.setLimit(t, "bob", 1000)

	bobFolder := env.mkdir(t, "bob", "private", nil)

	_, err := env.files.Upload(ctx, "alice", &bobFolder.ID, "spy.txt", "",
		10, bytes.NewReader(make([]byte, 10)))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign folder must surface as not found, got %v", err)
	}
	if got := env.usedBytes(t, "alice"); got != 0 {
		t.Errorf("used bytes: got %d, want 0", got)
	}
}

func TestDeleteFileFreesQuotaAndRevokesShare(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	file := env.upload(t, "alice", nil, "report.doc", 250)
	token, err := env.shares.Share(ctx, file.UUID, "alice")
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	if err := env.files.Delete(ctx, file.UUID, "alice"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if got := env.usedBytes(t, "alice"); got != 0 {
		t.Errorf("used bytes after delete: got %d, want 0", got)
	}
	if env.blob.Has(file.ContentKey) {
		t.Error("blob should be gone after delete")
	}
	if _, err := env.shares.Resolve(ctx, token); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("token must stop resolving after file delete, got %v", err)
	}
	if _, err := env.files.GetFileInfo(ctx, file.UUID, "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("file record should be gone, got %v", err)
	}
}

func TestDeleteForeignFileDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	file := env.upload(t, "alice", nil, "mine.txt", 50)

	if err := env.files.Delete(ctx, file.UUID, "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign delete must surface as not found, got %v", err)
	}
	if got := env.usedBytes(t, "alice"); got != 50 {
		t.Errorf("used bytes: got %d, want 50", got)
	}
}

func TestRenameFileKeepsQuota(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	file := env.upload(t, "alice", nil, "old.txt", 80)

	if err := env.files.Rename(ctx, file.UUID, "alice", "new.txt"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	got, err := env.files.GetFileInfo(ctx, file.UUID, "alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Name != "new.txt" {
		t.Errorf("name: got %q, want %q", got.Name, "new.txt")
	}
	if used := env.usedBytes(t, "alice"); used != 80 {
		t.Errorf("rename must not touch quota: used %d, want 80", used)
	}
}

func TestMoveFile(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)
	env.setLimit(t, "bob", 1000)

	docs := env.mkdir(t, "alice", "docs", nil)
	file := env.upload(t, "alice", nil, "cv.pdf", 40)

	if err := env.files.Move(ctx, file.UUID, "alice", &docs.ID); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	got, _ := env.files.GetFileInfo(ctx, file.UUID, "alice")
	if got.FolderID == nil || *got.FolderID != docs.ID {
		t.Error("file should live in docs after move")
	}

	// Back to root.
	if err := env.files.Move(ctx, file.UUID, "alice", nil); err != nil {
		t.Fatalf("move to root failed: %v", err)
	}
	got, _ = env.files.GetFileInfo(ctx, file.UUID, "alice")
	if got.FolderID != nil {
		t.Error("file should live at root after move")
	}

	// A foreign target must be rejected with no state change.
	bobFolder := env.mkdir(t, "bob", "inbox", nil)
	if err := env.files.Move(ctx, file.UUID, "alice", &bobFolder.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign target must surface as not found, got %v", err)
	}
	if used := env.usedBytes(t, "alice"); used != 40 {
		t.Errorf("move must not touch quota: used %d, want 40", used)
	}
}

// parkOnDelete holds the first blob delete of key open until release is
// closed, so a second operation can be started mid-delete.
func parkOnDelete(env *testEnv, key string) (entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	env.blob.DeleteHook = func(k string) error {
		if k == key {
			once.Do(func() {
				close(entered)
				<-release
			})
		}
		return nil
	}
	return entered, release
}

func TestConcurrentDeleteFreesQuotaOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	keep := env.upload(t, "alice", nil, "a.txt", 250)
	target := env.upload(t, "alice", nil, "b.txt", 250)

	entered, release := parkOnDelete(env, target.ContentKey)

	errs := make(chan error, 2)
	go func() { errs <- env.files.Delete(ctx, target.UUID, "alice") }()
	<-entered
	go func() { errs <- env.files.Delete(ctx, target.UUID, "alice") }()
	time.Sleep(50 * time.Millisecond)
	close(release)

	var succeeded, notFound int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 || notFound != 1 {
		t.Errorf("got %d successes and %d not-found, want exactly 1 and 1", succeeded, notFound)
	}
	if got := env.usedBytes(t, "alice"); got != 250 {
		t.Errorf("used bytes: got %d, want 250 (a.txt still alive)", got)
	}
	if !env.blob.Has(keep.ContentKey) {
		t.Error("a.txt's blob must survive")
	}
}

func TestUploadWaitsForCascadeOnTargetFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	doomed := env.mkdir(t, "alice", "doomed", nil)
	inside := env.upload(t, "alice", &doomed.ID, "inside.txt", 100)

	entered, release := parkOnDelete(env, inside.ContentKey)

	cascadeErr := make(chan error, 1)
	go func() { cascadeErr <- env.cascade.DeleteFolder(ctx, doomed.ID, "alice") }()
	<-entered

	uploadErr := make(chan error, 1)
	go func() {
		_, err := env.files.Upload(ctx, "alice", &doomed.ID, "late.txt", "",
			50, bytes.NewReader(make([]byte, 50)))
		uploadErr <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	if err := <-cascadeErr; err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}
	if err := <-uploadErr; !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("upload into a deleted folder must surface as not found, got %v", err)
	}

	if got := env.usedBytes(t, "alice"); got != 0 {
		t.Errorf("used bytes: got %d, want 0", got)
	}
	if env.blob.Len() != 0 {
		t.Errorf("blobs: got %d, want 0", env.blob.Len())
	}
}

func TestMoveWaitsForCascadeOnTargetFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 1000)

	doomed := env.mkdir(t, "alice", "doomed", nil)
	inside := env.upload(t, "alice", &doomed.ID, "inside.txt", 100)
	loose := env.upload(t, "alice", nil, "loose.txt", 40)

	entered, release := parkOnDelete(env, inside.ContentKey)

	cascadeErr := make(chan error, 1)
	go func() { cascadeErr <- env.cascade.DeleteFolder(ctx, doomed.ID, "alice") }()
	<-entered

	moveErr := make(chan error, 1)
	go func() { moveErr <- env.files.Move(ctx, loose.UUID, "alice", &doomed.ID) }()
	time.Sleep(50 * time.Millisecond)
	close(release)

	if err := <-cascadeErr; err != nil {
		t.Fatalf("cascade delete failed: %v", err)
	}
	if err := <-moveErr; !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("move into a deleted folder must surface as not found, got %v", err)
	}

	got, err := env.files.GetFileInfo(ctx, loose.UUID, "alice")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.FolderID != nil {
		t.Error("loose.txt must still live at the root, not in a deleted folder")
	}
	if used := env.usedBytes(t, "alice"); used != 40 {
		t.Errorf("used bytes: got %d, want 40", used)
	}
}
