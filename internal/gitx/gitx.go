// SPDX-License-Identifier: MIT
// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ErrGitNotFound is returned when the git binary cannot be started.
var ErrGitNotFound = errors.New("git executable not found")

// Output is the structured result of one git invocation.
type Output struct {
	// Lines is standard output split on newlines. Standard error is discarded.
	Lines []string
	// ExitCode is the process exit status. A non-zero status is not an error.
	ExitCode int
}

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in dir. The error is reserved for failures
	// of the transport itself (process could not start, context done).
	Run(ctx context.Context, dir string, args ...string) (Output, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
	// Timeout bounds each command. Zero means no limit.
	Timeout time.Duration
	// Trace, when set, is called before each command starts.
	Trace func(dir string, args []string)
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (Output, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	if g.Trace != nil {
		g.Trace(dir, args)
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Parallel runs must never block on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	detachProcessGroup(cmd)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		// A killed process also surfaces as an ExitError; report the context.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, fmt.Errorf("git %s: %w", subcommand(args), ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Output{Lines: SplitLines(stdout.String()), ExitCode: exitErr.ExitCode()}, nil
		}
		if errors.Is(err, exec.ErrNotFound) {
			return Output{}, fmt.Errorf("%w: %s", ErrGitNotFound, bin)
		}
		return Output{}, fmt.Errorf("git %s: %w", subcommand(args), err)
	}
	return Output{Lines: SplitLines(stdout.String())}, nil
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// HasGitDir reports whether dir contains a .git metadata directory. A .git
// file (linked worktree or submodule) does not count.
func HasGitDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// BranchExists reports whether refs/heads/<branch> exists. The ref is
// verified exactly, so prefixes never match.
func BranchExists(ctx context.Context, r Runner, dir, branch string) (bool, error) {
	out, err := r.Run(ctx, dir, "show-ref", "--verify", "refs/heads/"+branch)
	if err != nil {
		return false, err
	}
	return ParseRefExists(out.Lines), nil
}

// HasLocalChanges reports tracked modifications; untracked files are ignored.
func HasLocalChanges(ctx context.Context, r Runner, dir string) (bool, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return ParseLocalChanges(out.Lines), nil
}

// CurrentBranch returns the checked-out branch name, or "" when git reports none.
func CurrentBranch(ctx context.Context, r Runner, dir string) (string, error) {
	out, err := r.Run(ctx, dir, "branch")
	if err != nil {
		return "", err
	}
	return ParseCurrentBranch(out.Lines), nil
}

// StashCount returns the number of stash entries.
func StashCount(ctx context.Context, r Runner, dir string) (int, error) {
	out, err := r.Run(ctx, dir, "stash", "list")
	if err != nil {
		return 0, err
	}
	return ParseStashCount(out.Lines), nil
}

// Checkout switches the working tree to branch and returns git's exit status.
func Checkout(ctx context.Context, r Runner, dir, branch string) (int, error) {
	out, err := r.Run(ctx, dir, "checkout", branch)
	return out.ExitCode, err
}

// PullRebase rebases the current branch onto remote/branch.
func PullRebase(ctx context.Context, r Runner, dir, remote, branch string) (int, error) {
	out, err := r.Run(ctx, dir, "pull", "--rebase", remote, branch)
	return out.ExitCode, err
}

// FetchBranch refreshes the remote-tracking ref for branch so later status
// calls do not report stale ahead/behind state.
func FetchBranch(ctx context.Context, r Runner, dir, remote, branch string) (int, error) {
	out, err := r.Run(ctx, dir, "fetch", remote, branch)
	return out.ExitCode, err
}
