package fleetpull

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/fleetpull/internal/config"
	"github.com/skaphos/fleetpull/internal/discovery"
	"github.com/skaphos/fleetpull/internal/gitx"
	"github.com/skaphos/fleetpull/internal/model"
	"github.com/skaphos/fleetpull/internal/strutil"
	"github.com/skaphos/fleetpull/internal/vcs"
)

// newAdapter is overridable in tests.
var newAdapter = func(runner gitx.Runner) vcs.Adapter {
	return vcs.NewGitAdapter(runner)
}

// fleet is the resolved config and repository list for one command run.
type fleet struct {
	configPath string
	cfg        *config.Config
	repos      []model.RepositoryRef
}

// loadFleet resolves and loads the config, expands its repository list and
// applies --match. Every failure here happens before any repository is
// touched.
func loadFleet(cmd *cobra.Command) (fleet, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return fleet{}, err
	}
	cfgPath, err := config.ResolveConfigPath(flagConfig, cwd)
	if err != nil {
		return fleet{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fleet{}, fmt.Errorf("config not found at %s (run fleetpull init first)", cfgPath)
		}
		return fleet{}, err
	}
	debugf(cmd, "using config %s", cfgPath)

	repos, err := config.ResolveRepositories(cfgPath, cfg)
	switch {
	case errors.Is(err, config.ErrNoRepositories):
		infof(cmd, "no repositories configured in %s", cfgPath)
	case err != nil:
		return fleet{}, err
	}

	if cmd.Flags().Lookup("match") != nil {
		raw, _ := cmd.Flags().GetString("match")
		if patterns := strutil.SplitCSV(raw); len(patterns) > 0 {
			repos = filterRepositories(repos, patterns)
			debugf(cmd, "%d repositories match %s", len(repos), strings.Join(patterns, ","))
		}
	}
	return fleet{configPath: cfgPath, cfg: cfg, repos: repos}, nil
}

// filterRepositories keeps repositories whose name or path matches any of
// the patterns, preserving order.
func filterRepositories(repos []model.RepositoryRef, patterns []string) []model.RepositoryRef {
	out := make([]model.RepositoryRef, 0, len(repos))
	for _, repo := range repos {
		if discovery.MatchesExclude(repo.Name, patterns) || discovery.MatchesExclude(repo.Path, patterns) {
			out = append(out, repo)
		}
	}
	return out
}

// newRunner builds the git runner for a command. A positive timeoutSeconds
// overrides the configured per-command timeout.
func newRunner(cmd *cobra.Command, cfg *config.Config, timeoutSeconds int) *gitx.GitRunner {
	runner := &gitx.GitRunner{Timeout: cfg.Timeout()}
	if timeoutSeconds > 0 {
		runner.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	if flagVerbose > 0 && !flagQuiet {
		var mu sync.Mutex
		runner.Trace = func(dir string, args []string) {
			mu.Lock()
			defer mu.Unlock()
			debugf(cmd, "%s: git %s", dir, strings.Join(args, " "))
		}
	}
	return runner
}
