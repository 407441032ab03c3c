// SPDX-License-Identifier: MIT
// Package discovery walks root directories to find git working trees for
// "fleetpull init --scan".
package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/fleetpull/internal/gitx"
	"github.com/skaphos/fleetpull/internal/model"
)

// Options configures the discovery scan.
type Options struct {
	Roots          []string
	Exclude        []string // glob patterns to skip
	FollowSymlinks bool
}

// Scan walks all roots and returns discovered working trees in walk order.
// A directory counts when it holds a .git directory, the same test the
// synchronizer applies. Matched repositories are not descended into.
func Scan(ctx context.Context, opts Options) ([]model.RepositoryRef, error) {
	visited := make(map[string]struct{})
	var results []model.RepositoryRef

	for _, root := range opts.Roots {
		if root == "" {
			continue
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		if err := walkRoot(ctx, absRoot, opts, visited, &results); err != nil {
			return nil, err
		}
	}

	return results, nil
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

func walkRoot(ctx context.Context, root string, opts Options, visited map[string]struct{}, results *[]model.RepositoryRef) error {
	realRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		realRoot = resolved
	}
	if _, ok := visited[realRoot]; ok {
		return nil
	}
	visited[realRoot] = struct{}{}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		isLink := d.Type()&os.ModeSymlink != 0
		if !d.IsDir() && !isLink {
			return nil
		}
		if d.Name() == ".git" || MatchesExclude(path, opts.Exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if isLink {
			if !opts.FollowSymlinks {
				return nil
			}
			target, err := filepath.EvalSymlinks(path)
			if err != nil {
				return nil
			}
			info, err := os.Stat(target)
			if err != nil || !info.IsDir() {
				return nil
			}
			return walkRoot(ctx, target, opts, visited, results)
		}

		if gitx.HasGitDir(path) {
			*results = append(*results, model.NewRepositoryRef(path))
			return fs.SkipDir
		}
		return nil
	})
}
