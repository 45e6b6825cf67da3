package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vaultdrive/internal/domain"
)

func TestCreateFolderHierarchy(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	root := env.mkdir(t, "alice", "projects", nil)
	child := env.mkdir(t, "alice", "go", &root.ID)

	if child.ParentID == nil || *child.ParentID != root.ID {
		t.Error("child should be parented under projects")
	}

	content, err := env.folders.List(ctx, nil, "alice", 0, 0)
	if err != nil {
		t.Fatalf("list root failed: %v", err)
	}
	if len(content.Folders) != 1 || content.Folders[0].ID != root.ID {
		t.Errorf("root level should hold exactly the projects folder, got %d folders", len(content.Folders))
	}

	content, err = env.folders.List(ctx, &root.ID, "alice", 0, 0)
	if err != nil {
		t.Fatalf("list projects failed: %v", err)
	}
	if len(content.Folders) != 1 || content.Folders[0].ID != child.ID {
		t.Errorf("projects should hold exactly the go folder, got %d folders", len(content.Folders))
	}
}

func TestCreateFolderUnderMissingParent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	missing := int64(9999)
	if _, err := env.folders.Create(ctx, "alice", "orphan", &missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateFolderUnderForeignParent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	bobFolder := env.mkdir(t, "bob", "private", nil)

	if _, err := env.folders.Create(ctx, "alice", "intruder", &bobFolder.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign parent must surface as not found, got %v", err)
	}
}

func TestCreateFolderNameConflict(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.mkdir(t, "alice", "docs", nil)

	if _, err := env.folders.Create(ctx, "alice", "docs", nil); !errors.Is(err, domain.ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict, got %v", err)
	}

	// Same name under a different parent is fine.
	other := env.mkdir(t, "alice", "archive", nil)
	if _, err := env.folders.Create(ctx, "alice", "docs", &other.ID); err != nil {
		t.Fatalf("same name under another parent should work: %v", err)
	}

	// Other owners are unaffected.
	if _, err := env.folders.Create(ctx, "bob", "docs", nil); err != nil {
		t.Fatalf("name conflicts must be scoped per owner: %v", err)
	}
}

func TestRenameFolder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder := env.mkdir(t, "alice", "tmp", nil)
	env.mkdir(t, "alice", "taken", nil)

	if err := env.folders.Rename(ctx, folder.ID, "alice", "taken"); !errors.Is(err, domain.ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict, got %v", err)
	}

	if err := env.folders.Rename(ctx, folder.ID, "alice", "scratch"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}

	content, err := env.folders.List(ctx, &folder.ID, "alice", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if content.Folder.Name != "scratch" {
		t.Errorf("name: got %q, want %q", content.Folder.Name, "scratch")
	}
}

func TestMoveFolderRejectsCycles(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.mkdir(t, "alice", "a", nil)
	b := env.mkdir(t, "alice", "b", &a.ID)
	c := env.mkdir(t, "alice", "c", &b.ID)

	// Into itself.
	if err := env.folders.Move(ctx, a.ID, "alice", &a.ID); !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("move into self: expected ErrCycleDetected, got %v", err)
	}
	// Into a direct child.
	if err := env.folders.Move(ctx, a.ID, "alice", &b.ID); !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("move into child: expected ErrCycleDetected, got %v", err)
	}
	// Into a deeper descendant.
	if err := env.folders.Move(ctx, a.ID, "alice", &c.ID); !errors.Is(err, domain.ErrCycleDetected) {
		t.Fatalf("move into grandchild: expected ErrCycleDetected, got %v", err)
	}

	// Nothing moved.
	content, err := env.folders.List(ctx, nil, "alice", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(content.Folders) != 1 || content.Folders[0].ID != a.ID {
		t.Error("rejected moves must leave the tree unchanged")
	}
}

func TestMoveFolderUpAndToRoot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	a := env.mkdir(t, "alice", "a", nil)
	b := env.mkdir(t, "alice", "b", &a.ID)
	c := env.mkdir(t, "alice", "c", &b.ID)

	// A descendant moving up the chain is legal.
	if err := env.folders.Move(ctx, c.ID, "alice", &a.ID); err != nil {
		t.Fatalf("move up failed: %v", err)
	}

	if err := env.folders.Move(ctx, b.ID, "alice", nil); err != nil {
		t.Fatalf("move to root failed: %v", err)
	}

	content, err := env.folders.List(ctx, nil, "alice", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(content.Folders) != 2 {
		t.Errorf("root level should hold a and b, got %d folders", len(content.Folders))
	}
}

func TestMoveFolderToForeignParent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	folder := env.mkdir(t, "alice", "stuff", nil)
	bobFolder := env.mkdir(t, "bob", "inbox", nil)

	if err := env.folders.Move(ctx, folder.ID, "alice", &bobFolder.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign target must surface as not found, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.setLimit(t, "alice", 100000)

	parent := env.mkdir(t, "alice", "bulk", nil)
	for i := 0; i < 5; i++ {
		env.mkdir(t, "alice", fmt.Sprintf("sub-%d", i), &parent.ID)
		env.upload(t, "alice", &parent.ID, fmt.Sprintf("file-%d.txt", i), 10)
	}

	first, err := env.folders.List(ctx, &parent.ID, "alice", 3, 0)
	if err != nil {
		t.Fatalf("list page 1 failed: %v", err)
	}
	if len(first.Folders) != 3 || len(first.Files) != 3 {
		t.Fatalf("page 1: got %d folders and %d files, want 3 and 3", len(first.Folders), len(first.Files))
	}

	second, err := env.folders.List(ctx, &parent.ID, "alice", 3, 3)
	if err != nil {
		t.Fatalf("list page 2 failed: %v", err)
	}
	if len(second.Folders) != 2 || len(second.Files) != 2 {
		t.Fatalf("page 2: got %d folders and %d files, want 2 and 2", len(second.Folders), len(second.Files))
	}

	if first.Folders[0].ID == second.Folders[0].ID {
		t.Error("pages must not overlap")
	}
}

func TestListForeignFolderDenied(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	bobFolder := env.mkdir(t, "bob", "private", nil)

	if _, err := env.folders.List(ctx, &bobFolder.ID, "alice", 0, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign folder must surface as not found, got %v", err)
	}
}
