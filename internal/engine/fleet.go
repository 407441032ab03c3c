// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/skaphos/fleetpull/internal/gitx"
	"github.com/skaphos/fleetpull/internal/model"
	"github.com/skaphos/fleetpull/internal/vcs"
)

// ErrNoBranch is returned when a run is requested without a target branch.
var ErrNoBranch = errors.New("branch name is required")

// FleetOptions configures a fleet run.
type FleetOptions struct {
	Branch       string
	Repositories []model.RepositoryRef
	Fetch        bool
	// Concurrency caps in-flight repositories. Zero uses the configured
	// default and a negative value starts every repository at once.
	Concurrency int
}

// RunFleet syncs every repository onto opts.Branch and returns one result
// per repository in declared order. Once ctx is done no further repository
// is started, but repositories already in flight run to completion.
func (e *Engine) RunFleet(ctx context.Context, opts FleetOptions) (model.FleetResult, error) {
	branch := strings.TrimSpace(opts.Branch)
	if branch == "" {
		return model.FleetResult{}, ErrNoBranch
	}
	refs := opts.Repositories
	results := fanOut(ctx, e.limit(opts.Concurrency, len(refs)), len(refs),
		func(unitCtx context.Context, i int) model.SyncResult {
			return e.runUnit(unitCtx, model.SyncRequest{Repository: refs[i], Branch: branch, Fetch: opts.Fetch})
		},
		func(i int, err error) model.SyncResult {
			msg := fmt.Sprintf("%s: not started: %v", refs[i].Name, err)
			e.report(model.LevelWarn, msg)
			return model.SyncResult{
				Repository: refs[i],
				Outcome:    model.OutcomeSkippedNotARepo,
				Message:    msg,
				ErrorClass: gitx.ClassifyError(err),
			}
		})
	return model.NewFleetResult(results), nil
}

// InspectFleet snapshots every repository without mutating anything. An
// empty branch skips the branch existence check.
func (e *Engine) InspectFleet(ctx context.Context, refs []model.RepositoryRef, branch string, concurrency int) []model.RepositoryState {
	return fanOut(ctx, e.limit(concurrency, len(refs)), len(refs),
		func(unitCtx context.Context, i int) (state model.RepositoryState) {
			defer func() {
				if r := recover(); r != nil {
					state = model.RepositoryState{Repository: refs[i], Error: fmt.Sprintf("panic: %v", r)}
				}
			}()
			state, err := vcs.Inspect(unitCtx, e.adapter, refs[i], branch)
			if err != nil {
				state.Error = err.Error()
			}
			return state
		},
		func(i int, err error) model.RepositoryState {
			return model.RepositoryState{Repository: refs[i], Error: "not started: " + err.Error()}
		})
}

func (e *Engine) runUnit(ctx context.Context, req model.SyncRequest) (res model.SyncResult) {
	defer func() {
		if r := recover(); r != nil {
			res = e.absorbFailure(req.Repository, fmt.Errorf("panic: %v", r))
		}
	}()
	var err error
	res, err = e.SyncRepo(ctx, req)
	if err != nil {
		return e.absorbFailure(req.Repository, err)
	}
	return res
}

func (e *Engine) limit(requested, n int) int {
	limit := requested
	if limit == 0 && e.cfg != nil {
		limit = e.cfg.Defaults.Concurrency
	}
	if limit <= 0 || limit > n {
		limit = n
	}
	return limit
}

type indexed[T any] struct {
	index int
	value T
}

// fanOut runs n units with at most limit in flight. Acquiring a slot is the
// only point where cancellation is observed; a unit that never got a slot is
// filled in by notStarted. Started units run on a context detached from
// cancellation so they are never interrupted halfway.
func fanOut[T any](ctx context.Context, limit, n int, run func(context.Context, int) T, notStarted func(int, error) T) []T {
	out := make([]T, n)
	if n == 0 {
		return out
	}
	if limit <= 0 {
		limit = n
	}
	sem := semaphore.NewWeighted(int64(limit))
	// Buffered for every unit so senders never hold a slot while blocked.
	ch := make(chan indexed[T], n)
	unitCtx := context.WithoutCancel(ctx)

	started := 0
	for i := 0; i < n; i++ {
		err := ctx.Err()
		if err == nil {
			err = sem.Acquire(ctx, 1)
		}
		if err != nil {
			out[i] = notStarted(i, err)
			continue
		}
		started++
		go func(i int) {
			defer sem.Release(1)
			ch <- indexed[T]{index: i, value: run(unitCtx, i)}
		}(i)
	}

	for range started {
		r := <-ch
		out[r.index] = r.value
	}
	return out
}
