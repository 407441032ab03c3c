// SPDX-License-Identifier: MIT
package gitx

import "strings"

// SplitLines splits raw command output into rows. A single trailing newline
// does not produce an empty final row.
func SplitLines(raw string) []string {
	raw = strings.TrimSuffix(raw, "\n")
	if raw == "" {
		return nil
	}
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ParseRefExists interprets `git show-ref --verify` output. git prints
// nothing on stdout for an unknown ref, so any non-empty row means it exists.
func ParseRefExists(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// ParseLocalChanges interprets `git status --porcelain` output. Rows whose
// first token is "??" are untracked and do not count as local changes.
func ParseLocalChanges(lines []string) bool {
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "??" {
			continue
		}
		return true
	}
	return false
}

// ParseCurrentBranch interprets `git branch` output and returns the second
// token of the row marked with "*". A detached HEAD yields "(HEAD".
func ParseCurrentBranch(lines []string) string {
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) > 1 && fields[0] == "*" {
			return strings.TrimSpace(fields[1])
		}
	}
	return ""
}

// ParseStashCount counts the entries of `git stash list`.
func ParseStashCount(lines []string) int {
	count := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
