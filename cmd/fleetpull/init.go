// SPDX-License-Identifier: MIT
package fleetpull

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skaphos/fleetpull/internal/cliio"
	"github.com/skaphos/fleetpull/internal/config"
	"github.com/skaphos/fleetpull/internal/discovery"
)

// isTerminalFD is overridable in tests.
var isTerminalFD = term.IsTerminal

var initCmd = &cobra.Command{
	Use:   "init [path...]",
	Short: "Bootstrap a fleetpull configuration",
	Long: "Creates a fleetpull config file in the current directory by default.\n" +
		"Repositories come from the given paths and from every git working tree found under --scan roots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		scanRoots, _ := cmd.Flags().GetStringSlice("scan")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		followSymlinks, _ := cmd.Flags().GetBool("follow-symlinks")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfgPath, err := config.InitConfigPath(flagConfig, cwd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil && !force {
			confirmed, err := confirmOverwrite(cmd, cfgPath)
			if err != nil {
				return err
			}
			if !confirmed {
				infof(cmd, "init cancelled")
				return nil
			}
		}

		cfg := config.DefaultConfig()
		cfg.Exclude = exclude
		seen := make(map[string]struct{})
		add := func(path string) {
			if _, ok := seen[path]; ok {
				return
			}
			seen[path] = struct{}{}
			cfg.Git = append(cfg.Git, path)
		}
		for _, arg := range args {
			path, err := config.ExpandPath(arg, cwd)
			if err != nil {
				return err
			}
			add(path)
		}
		if len(scanRoots) > 0 {
			found, err := discovery.Scan(cmd.Context(), discovery.Options{
				Roots:          scanRoots,
				Exclude:        exclude,
				FollowSymlinks: followSymlinks,
			})
			if err != nil {
				return err
			}
			for _, repo := range found {
				debugf(cmd, "found %s", repo.Path)
				add(repo.Path)
			}
		}

		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s (%d repositories)\n", cfgPath, len(cfg.Git))
		return err
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")
	initCmd.Flags().StringSlice("scan", nil, "root directory to search for git repositories (repeatable)")
	initCmd.Flags().StringSlice("exclude", nil, "glob patterns to skip while scanning; also written to the config")
	initCmd.Flags().Bool("follow-symlinks", false, "follow symlinked directories while scanning")

	rootCmd.AddCommand(initCmd)
}

// confirmOverwrite asks before replacing an existing config. Without a
// terminal on stdin it refuses, so scripts must pass --force.
func confirmOverwrite(cmd *cobra.Command, cfgPath string) (bool, error) {
	in := cmd.InOrStdin()
	if !readerIsTerminal(in) {
		return false, fmt.Errorf("config already exists at %q (use --force to overwrite)", filepath.Clean(cfgPath))
	}
	return cliio.PromptYesNo(cmd.ErrOrStderr(), in, fmt.Sprintf("Config already exists at %s. Overwrite? [y/N]: ", cfgPath))
}

func readerIsTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && isTerminalFD(int(f.Fd()))
}
