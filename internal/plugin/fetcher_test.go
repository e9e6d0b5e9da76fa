package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// newSourceRepo creates a local git repository with one commit, usable as
// a clone URL.
func newSourceRepo(t *testing.T) string {
	t.Helper()
	srcDir := t.TempDir()

	repo, err := gogit.PlainInit(srcDir, false)
	if err != nil {
		t.Fatalf("init source repo: %v", err)
	}

	commitFile(t, repo, srcDir, "plugin.zsh", "# plugin v1\n")
	return srcDir
}

func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("get worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("stage %s: %v", name, err)
	}
	_, err = worktree.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestCloneOrUpdate_ClonesMissingRepo(t *testing.T) {
	srcDir := newSourceRepo(t)
	destPath := filepath.Join(t.TempDir(), "plugins", "test-plugin")

	f := NewFetcher()
	status, err := f.CloneOrUpdate(context.Background(), srcDir, destPath)
	if err != nil {
		t.Fatalf("CloneOrUpdate failed: %v", err)
	}
	if status != StatusCloned {
		t.Errorf("status = %v, want cloned", status)
	}

	if _, err := os.Stat(filepath.Join(destPath, "plugin.zsh")); err != nil {
		t.Errorf("cloned file missing: %v", err)
	}
}

func TestCloneOrUpdate_UpToDate(t *testing.T) {
	srcDir := newSourceRepo(t)
	destPath := filepath.Join(t.TempDir(), "test-plugin")

	f := NewFetcher()
	if _, err := f.CloneOrUpdate(context.Background(), srcDir, destPath); err != nil {
		t.Fatalf("initial clone failed: %v", err)
	}

	status, err := f.CloneOrUpdate(context.Background(), srcDir, destPath)
	if err != nil {
		t.Fatalf("second CloneOrUpdate failed: %v", err)
	}
	if status != StatusUpToDate {
		t.Errorf("status = %v, want up to date", status)
	}
}

func TestCloneOrUpdate_PullsNewCommits(t *testing.T) {
	srcDir := newSourceRepo(t)
	destPath := filepath.Join(t.TempDir(), "test-plugin")

	f := NewFetcher()
	if _, err := f.CloneOrUpdate(context.Background(), srcDir, destPath); err != nil {
		t.Fatalf("initial clone failed: %v", err)
	}

	// Advance the source repository.
	srcRepo, err := gogit.PlainOpen(srcDir)
	if err != nil {
		t.Fatalf("open source repo: %v", err)
	}
	commitFile(t, srcRepo, srcDir, "plugin.zsh", "# plugin v2\n")

	status, err := f.CloneOrUpdate(context.Background(), srcDir, destPath)
	if err != nil {
		t.Fatalf("CloneOrUpdate failed: %v", err)
	}
	if status != StatusUpdated {
		t.Errorf("status = %v, want updated", status)
	}

	data, err := os.ReadFile(filepath.Join(destPath, "plugin.zsh"))
	if err != nil {
		t.Fatalf("read pulled file: %v", err)
	}
	if string(data) != "# plugin v2\n" {
		t.Errorf("pulled content = %q, want updated content", string(data))
	}
}

func TestCloneOrUpdate_BadURLFails(t *testing.T) {
	destPath := filepath.Join(t.TempDir(), "test-plugin")

	f := NewFetcher()
	status, err := f.CloneOrUpdate(context.Background(), filepath.Join(t.TempDir(), "no-such-repo"), destPath)
	if err == nil {
		t.Fatal("expected error for nonexistent source")
	}
	if status != StatusFailed {
		t.Errorf("status = %v, want failed", status)
	}

	// A failed clone must not leave a partial checkout behind.
	if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
		t.Error("failed clone left the destination directory behind")
	}
}

func TestCloneOrUpdate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher()
	status, err := f.CloneOrUpdate(ctx, "unused", filepath.Join(t.TempDir(), "dest"))
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if status != StatusFailed {
		t.Errorf("status = %v, want failed", status)
	}
}
