// SPDX-License-Identifier: MIT
// Package model defines the core data types used throughout fleetpull.
package model

import (
	"fmt"
	"path/filepath"
)

// RepositoryRef identifies one repository in the fleet.
type RepositoryRef struct {
	// Path is the absolute filesystem path to the working tree.
	Path string `json:"path" yaml:"path"`
	// Name is the display name, the last path component.
	Name string `json:"name" yaml:"name"`
}

// NewRepositoryRef builds a ref whose Name is derived from path.
func NewRepositoryRef(path string) RepositoryRef {
	clean := filepath.Clean(path)
	return RepositoryRef{Path: clean, Name: filepath.Base(clean)}
}

// SyncRequest pairs a repository with the branch and fetch setting of a run.
type SyncRequest struct {
	Repository RepositoryRef `json:"repository" yaml:"repository"`
	Branch     string        `json:"branch" yaml:"branch"`
	Fetch      bool          `json:"fetch" yaml:"fetch"`
}

// RepositoryState is a point-in-time snapshot of a repository. It is never
// cached; the synchronizer queries each field live.
type RepositoryState struct {
	Repository      RepositoryRef `json:"repository" yaml:"repository"`
	IsValidRepo     bool          `json:"valid_repo" yaml:"valid_repo"`
	BranchExists    bool          `json:"branch_exists" yaml:"branch_exists"`
	HasLocalChanges bool          `json:"local_changes" yaml:"local_changes"`
	StashCount      int           `json:"stash_count" yaml:"stash_count"`
	CurrentBranch   string        `json:"current_branch" yaml:"current_branch"`
	// Error holds inspection failure text, if any.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Outcome is the typed result category for one repository.
type Outcome string

const (
	OutcomeSynced               Outcome = "synced"
	OutcomeSkippedNotARepo      Outcome = "skipped_not_a_repo"
	OutcomeSkippedInvalidBranch Outcome = "skipped_invalid_branch"
	OutcomeSkippedLocalChanges  Outcome = "skipped_local_changes"
)

// SyncResult records the outcome for one repository in one run.
type SyncResult struct {
	Repository RepositoryRef `json:"repository" yaml:"repository"`
	Outcome    Outcome       `json:"outcome" yaml:"outcome"`
	// StashCount is the number of stash entries observed before any mutation.
	StashCount int    `json:"stash_count" yaml:"stash_count"`
	Message    string `json:"message" yaml:"message"`
	// ErrorClass is set only when an unexpected failure was absorbed.
	ErrorClass string `json:"error_class,omitempty" yaml:"error_class,omitempty"`
}

// OK reports whether the repository was synced.
func (r SyncResult) OK() bool { return r.Outcome == OutcomeSynced }

// FleetResult aggregates every SyncResult of a run in declared order.
type FleetResult struct {
	Total   int          `json:"total" yaml:"total"`
	Failed  int          `json:"failed" yaml:"failed"`
	Results []SyncResult `json:"results" yaml:"results"`
}

// NewFleetResult computes the counters from results.
func NewFleetResult(results []SyncResult) FleetResult {
	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
	}
	return FleetResult{Total: len(results), Failed: failed, Results: results}
}

// Summary returns the closing line of a run.
func (f FleetResult) Summary() string {
	if f.Failed == 0 {
		return "Done."
	}
	return fmt.Sprintf("Done. ( %d projects untouched )", f.Failed)
}

// StashNote renders the stash suffix appended to success messages.
func StashNote(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return " ( 1 existent stash )"
	default:
		return fmt.Sprintf(" ( %d existent stashes )", count)
	}
}

// Level is the severity of a reported event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is a single line of progress emitted by the engine.
type Event struct {
	Level Level  `json:"level" yaml:"level"`
	Text  string `json:"text" yaml:"text"`
}
