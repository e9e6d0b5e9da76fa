// Package plugin fetches zsh plugin repositories (and oh-my-zsh itself)
// with context support and proper error handling.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

// Status classifies the outcome of a clone-or-update.
type Status int

const (
	// StatusCloned means the repository did not exist and was cloned.
	StatusCloned Status = iota
	// StatusUpdated means the repository existed and new commits were pulled.
	StatusUpdated
	// StatusUpToDate means the repository existed and had nothing to pull.
	StatusUpToDate
	// StatusFailed means the operation failed. Callers downgrade this to a
	// warning; a single broken plugin never aborts the run.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusCloned:
		return "cloned"
	case StatusUpdated:
		return "updated"
	case StatusUpToDate:
		return "up to date"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Repo names a repository to fetch and where to put it.
type Repo struct {
	// Name is the plugin directory name (e.g. "zsh-autosuggestions").
	Name string
	// URL is the clone URL.
	URL string
}

// Fetcher clones and updates git repositories using go-git.
type Fetcher struct{}

// NewFetcher creates a repository fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// CloneOrUpdate makes destPath contain an up-to-date clone of url. A
// missing destination is cloned; an existing one is pulled. The returned
// status is StatusFailed exactly when the error is non-nil.
func (f *Fetcher) CloneOrUpdate(ctx context.Context, url, destPath string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusFailed, fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := gogit.PlainOpen(destPath)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return f.clone(ctx, url, destPath)
	}
	if err != nil {
		return StatusFailed, fmt.Errorf("open repository %s: %w", destPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return StatusFailed, fmt.Errorf("get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{RemoteName: "origin"})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return StatusUpToDate, nil
	}
	if err != nil {
		return StatusFailed, fmt.Errorf("pull %s: %w", destPath, err)
	}

	return StatusUpdated, nil
}

// clone performs the initial clone into destPath.
func (f *Fetcher) clone(ctx context.Context, url, destPath string) (Status, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return StatusFailed, fmt.Errorf("create plugin directory: %w", err)
	}

	_, err := gogit.PlainCloneContext(ctx, destPath, false, &gogit.CloneOptions{
		URL: url,
	})
	if err != nil {
		// Leave no half-finished clone behind; the next run retries cleanly.
		os.RemoveAll(destPath)
		return StatusFailed, fmt.Errorf("clone %s: %w", url, err)
	}

	return StatusCloned, nil
}
