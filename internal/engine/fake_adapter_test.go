package engine_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skaphos/fleetpull/internal/model"
)

type fakeRepo struct {
	valid    bool
	branches []string
	dirty    bool
	stashes  int
	current  string

	checkoutExit int
	pullExit     int
	fetchExit    int

	err    error
	panics bool
	delay  time.Duration
}

// fakeAdapter implements vcs.Adapter over in-memory repositories keyed by path.
type fakeAdapter struct {
	mu    sync.Mutex
	repos map[string]*fakeRepo
	calls []string
	// meet, when set, holds every BranchExists call until all units arrive.
	meet *rendezvous
}

// rendezvous blocks each caller until parties callers have arrived or the
// timeout expires. Missed counts callers that gave up waiting.
type rendezvous struct {
	wg      sync.WaitGroup
	timeout time.Duration
	missed  atomic.Int32
}

func newRendezvous(parties int, timeout time.Duration) *rendezvous {
	r := &rendezvous{timeout: timeout}
	r.wg.Add(parties)
	return r
}

func (r *rendezvous) arrive() {
	r.wg.Done()
	all := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(all)
	}()
	select {
	case <-all:
	case <-time.After(r.timeout):
		r.missed.Add(1)
	}
}

func (r *rendezvous) Missed() int { return int(r.missed.Load()) }

func newFakeAdapter(repos map[string]*fakeRepo) *fakeAdapter {
	return &fakeAdapter{repos: repos}
}

func (f *fakeAdapter) record(ref model.RepositoryRef, call string) *fakeRepo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref.Name+":"+call)
	return f.repos[ref.Path]
}

func (f *fakeAdapter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAdapter) Name() string { return "fake" }

func (f *fakeAdapter) IsRepository(ref model.RepositoryRef) bool {
	repo := f.record(ref, "is-repo")
	return repo != nil && repo.valid
}

func (f *fakeAdapter) BranchExists(_ context.Context, ref model.RepositoryRef, branch string) (bool, error) {
	repo := f.record(ref, "branch-exists "+branch)
	if f.meet != nil {
		f.meet.arrive()
	}
	if repo.delay > 0 {
		time.Sleep(repo.delay)
	}
	if repo.panics {
		panic("boom")
	}
	if repo.err != nil {
		return false, repo.err
	}
	return slices.Contains(repo.branches, branch), nil
}

func (f *fakeAdapter) HasLocalChanges(_ context.Context, ref model.RepositoryRef) (bool, error) {
	return f.record(ref, "status").dirty, nil
}

func (f *fakeAdapter) CurrentBranch(_ context.Context, ref model.RepositoryRef) (string, error) {
	repo := f.record(ref, "current-branch")
	f.mu.Lock()
	defer f.mu.Unlock()
	return repo.current, nil
}

func (f *fakeAdapter) StashCount(_ context.Context, ref model.RepositoryRef) (int, error) {
	return f.record(ref, "stash-count").stashes, nil
}

func (f *fakeAdapter) Checkout(_ context.Context, ref model.RepositoryRef, branch string) (int, error) {
	repo := f.record(ref, "checkout "+branch)
	f.mu.Lock()
	defer f.mu.Unlock()
	if repo.checkoutExit == 0 {
		repo.current = branch
	}
	return repo.checkoutExit, nil
}

func (f *fakeAdapter) PullRebase(_ context.Context, ref model.RepositoryRef, remote, branch string) (int, error) {
	return f.record(ref, "pull "+remote+" "+branch).pullExit, nil
}

func (f *fakeAdapter) FetchBranch(_ context.Context, ref model.RepositoryRef, remote, branch string) (int, error) {
	return f.record(ref, "fetch "+remote+" "+branch).fetchExit, nil
}

func ref(name string) model.RepositoryRef {
	return model.NewRepositoryRef("/src/" + name)
}
