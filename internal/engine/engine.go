// SPDX-License-Identifier: MIT
// Package engine runs the safety-gated branch sync for a single repository
// and fans it out across the configured fleet.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/skaphos/fleetpull/internal/config"
	"github.com/skaphos/fleetpull/internal/gitx"
	"github.com/skaphos/fleetpull/internal/model"
	"github.com/skaphos/fleetpull/internal/vcs"
)

// Engine is the core orchestrator for fleetpull operations.
type Engine struct {
	cfg      *config.Config
	adapter  vcs.Adapter
	reporter Reporter
}

// New creates a new Engine. A nil adapter defaults to git and a nil
// reporter discards events.
func New(cfg *config.Config, adapter vcs.Adapter, reporter Reporter) *Engine {
	if cfg == nil {
		defaults := config.DefaultConfig()
		cfg = &defaults
	}
	if adapter == nil {
		adapter = vcs.NewGitAdapter(nil)
	}
	if reporter == nil {
		reporter = Discard
	}
	return &Engine{
		cfg:      cfg,
		adapter:  adapter,
		reporter: &lockedReporter{next: reporter},
	}
}

// Config returns the engine configuration reference.
func (e *Engine) Config() *config.Config { return e.cfg }

// Adapter returns the engine VCS adapter.
func (e *Engine) Adapter() vcs.Adapter { return e.adapter }

// SyncRepo moves one repository onto req.Branch, refusing to touch it unless
// it is a repository, the branch exists locally and the working tree is clean.
// Precondition failures are skip outcomes, not errors; the error return is
// reserved for transport failures of the VCS runner.
func (e *Engine) SyncRepo(ctx context.Context, req model.SyncRequest) (model.SyncResult, error) {
	ref := req.Repository
	result := model.SyncResult{Repository: ref}

	if !e.adapter.IsRepository(ref) {
		return e.skip(result, model.OutcomeSkippedNotARepo,
			fmt.Sprintf("%s is not a valid git project", ref.Name)), nil
	}

	exists, err := e.adapter.BranchExists(ctx, ref, req.Branch)
	if err != nil {
		return result, err
	}
	if !exists {
		return e.skip(result, model.OutcomeSkippedInvalidBranch,
			fmt.Sprintf("Branch %s is not valid for project %s", req.Branch, ref.Name)), nil
	}

	dirty, err := e.adapter.HasLocalChanges(ctx, ref)
	if err != nil {
		return result, err
	}
	if dirty {
		return e.skip(result, model.OutcomeSkippedLocalChanges,
			fmt.Sprintf("Local changes found for %s, won't chase pulling upstream anymore", ref.Name)), nil
	}

	// Read before anything mutates the repository.
	stashes, err := e.adapter.StashCount(ctx, ref)
	if err != nil {
		return result, err
	}
	result.StashCount = stashes

	if err := e.switchBranch(ctx, ref, req.Branch); err != nil {
		return result, err
	}

	result.Outcome = model.OutcomeSynced
	if !req.Fetch {
		result.Message = fmt.Sprintf("Done switching %s to %s%s", ref.Name, req.Branch, model.StashNote(stashes))
		return result, nil
	}
	if err := e.pullUpstream(ctx, ref, req.Branch); err != nil {
		return result, err
	}
	result.Message = fmt.Sprintf("Done getting data from upstream for %s%s", ref.Name, model.StashNote(stashes))
	e.report(model.LevelInfo, result.Message)
	return result, nil
}

func (e *Engine) switchBranch(ctx context.Context, ref model.RepositoryRef, branch string) error {
	current, err := e.adapter.CurrentBranch(ctx, ref)
	if err != nil {
		return err
	}
	if current == branch {
		return nil
	}
	code, err := e.adapter.Checkout(ctx, ref, branch)
	if err != nil {
		return err
	}
	if code != 0 {
		e.warnExit(ref, "checkout", code)
		return nil
	}
	e.report(model.LevelInfo, fmt.Sprintf("Switched branches for %s (%s -> %s)", ref.Name, current, branch))
	return nil
}

func (e *Engine) pullUpstream(ctx context.Context, ref model.RepositoryRef, branch string) error {
	remote := e.remoteName()
	code, err := e.adapter.PullRebase(ctx, ref, remote, branch)
	if err != nil {
		return err
	}
	if code != 0 {
		e.warnExit(ref, "pull --rebase", code)
	}
	// Refresh the remote-tracking ref so a later status is not stale.
	code, err = e.adapter.FetchBranch(ctx, ref, remote, branch)
	if err != nil {
		return err
	}
	if code != 0 {
		e.warnExit(ref, "fetch", code)
	}
	return nil
}

func (e *Engine) skip(result model.SyncResult, outcome model.Outcome, msg string) model.SyncResult {
	result.Outcome = outcome
	result.Message = msg
	e.report(model.LevelError, msg)
	return result
}

// absorbFailure turns an unexpected unit failure into a skip result so one
// repository can never abort the fleet.
func (e *Engine) absorbFailure(ref model.RepositoryRef, err error) model.SyncResult {
	msg := fmt.Sprintf("%s: %v", ref.Name, err)
	e.report(model.LevelError, msg)
	return model.SyncResult{
		Repository: ref,
		Outcome:    model.OutcomeSkippedNotARepo,
		Message:    msg,
		ErrorClass: gitx.ClassifyError(err),
	}
}

func (e *Engine) warnExit(ref model.RepositoryRef, command string, code int) {
	e.report(model.LevelWarn, fmt.Sprintf("%s: git %s exited with status %d", ref.Name, command, code))
}

func (e *Engine) report(level model.Level, text string) {
	e.reporter.Report(model.Event{Level: level, Text: text})
}

func (e *Engine) remoteName() string {
	if e.cfg != nil {
		if name := strings.TrimSpace(e.cfg.Defaults.RemoteName); name != "" {
			return name
		}
	}
	return config.DefaultConfig().Defaults.RemoteName
}
