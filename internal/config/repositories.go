// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/fleetpull/internal/discovery"
	"github.com/skaphos/fleetpull/internal/model"
)

// ResolveRepositories expands the git list into repository refs in declared
// order. Entries may start with "~", be relative to the config file, or be
// doublestar patterns that expand to the matching directories in sorted
// order. Plain paths are kept even when they do not exist so the run can
// report them. Exclude patterns and duplicates are dropped.
func ResolveRepositories(configPath string, cfg *Config) ([]model.RepositoryRef, error) {
	if cfg == nil || len(cfg.Git) == 0 {
		return nil, ErrNoRepositories
	}
	base := ConfigRoot(configPath)

	seen := make(map[string]struct{}, len(cfg.Git))
	refs := make([]model.RepositoryRef, 0, len(cfg.Git))
	for _, entry := range cfg.Git {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		path, err := ExpandPath(entry, base)
		if err != nil {
			return nil, err
		}

		paths := []string{path}
		if hasGlobMeta(entry) {
			paths, err = globDirs(path)
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", entry, err)
			}
		}
		for _, p := range paths {
			ref := model.NewRepositoryRef(p)
			if _, dup := seen[ref.Path]; dup {
				continue
			}
			if discovery.MatchesExclude(ref.Path, cfg.Exclude) {
				continue
			}
			seen[ref.Path] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// ExpandPath resolves "~" against the home directory and relative paths
// against base. The result is cleaned.
func ExpandPath(path, base string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %q: %w", path, err)
		}
		path = filepath.Join(home, path[1:])
	}
	if !filepath.IsAbs(path) && base != "" {
		path = filepath.Join(base, path)
	}
	return filepath.Clean(path), nil
}

// ConfigRoot returns the absolute directory relative entries resolve against.
func ConfigRoot(configPath string) string {
	if strings.TrimSpace(configPath) == "" {
		return ""
	}
	dir := filepath.Dir(configPath)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}

func globDirs(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	dirs := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}
