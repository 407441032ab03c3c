// SPDX-License-Identifier: MIT
package vcs

import (
	"context"

	"github.com/skaphos/fleetpull/internal/gitx"
	"github.com/skaphos/fleetpull/internal/model"
)

// Inspector answers read-only state questions about one repository. Every
// call reaches the VCS afresh; nothing is cached between calls.
type Inspector interface {
	Name() string
	IsRepository(ref model.RepositoryRef) bool
	BranchExists(ctx context.Context, ref model.RepositoryRef, branch string) (bool, error)
	HasLocalChanges(ctx context.Context, ref model.RepositoryRef) (bool, error)
	CurrentBranch(ctx context.Context, ref model.RepositoryRef) (string, error)
	StashCount(ctx context.Context, ref model.RepositoryRef) (int, error)
}

// Syncer performs the mutating operations of a sync. Each returns the VCS
// exit status; a non-zero status is reported, never treated as an error.
type Syncer interface {
	Checkout(ctx context.Context, ref model.RepositoryRef, branch string) (int, error)
	PullRebase(ctx context.Context, ref model.RepositoryRef, remote, branch string) (int, error)
	FetchBranch(ctx context.Context, ref model.RepositoryRef, remote, branch string) (int, error)
}

// Adapter is everything the engine needs from a VCS backend.
type Adapter interface {
	Inspector
	Syncer
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) Name() string { return "git" }

func (g *GitAdapter) IsRepository(ref model.RepositoryRef) bool {
	return gitx.HasGitDir(ref.Path)
}

func (g *GitAdapter) BranchExists(ctx context.Context, ref model.RepositoryRef, branch string) (bool, error) {
	return gitx.BranchExists(ctx, g.Runner, ref.Path, branch)
}

func (g *GitAdapter) HasLocalChanges(ctx context.Context, ref model.RepositoryRef) (bool, error) {
	return gitx.HasLocalChanges(ctx, g.Runner, ref.Path)
}

func (g *GitAdapter) CurrentBranch(ctx context.Context, ref model.RepositoryRef) (string, error) {
	return gitx.CurrentBranch(ctx, g.Runner, ref.Path)
}

func (g *GitAdapter) StashCount(ctx context.Context, ref model.RepositoryRef) (int, error) {
	return gitx.StashCount(ctx, g.Runner, ref.Path)
}

func (g *GitAdapter) Checkout(ctx context.Context, ref model.RepositoryRef, branch string) (int, error) {
	return gitx.Checkout(ctx, g.Runner, ref.Path, branch)
}

func (g *GitAdapter) PullRebase(ctx context.Context, ref model.RepositoryRef, remote, branch string) (int, error) {
	return gitx.PullRebase(ctx, g.Runner, ref.Path, remote, branch)
}

func (g *GitAdapter) FetchBranch(ctx context.Context, ref model.RepositoryRef, remote, branch string) (int, error) {
	return gitx.FetchBranch(ctx, g.Runner, ref.Path, remote, branch)
}

// Inspect collects a full RepositoryState for display without mutating the
// repository. It stops at the first runner failure.
func Inspect(ctx context.Context, in Inspector, ref model.RepositoryRef, branch string) (model.RepositoryState, error) {
	state := model.RepositoryState{Repository: ref}
	state.IsValidRepo = in.IsRepository(ref)
	if !state.IsValidRepo {
		return state, nil
	}

	var err error
	if state.CurrentBranch, err = in.CurrentBranch(ctx, ref); err != nil {
		return state, err
	}
	if branch != "" {
		if state.BranchExists, err = in.BranchExists(ctx, ref, branch); err != nil {
			return state, err
		}
	}
	if state.HasLocalChanges, err = in.HasLocalChanges(ctx, ref); err != nil {
		return state, err
	}
	if state.StashCount, err = in.StashCount(ctx, ref); err != nil {
		return state, err
	}
	return state, nil
}
