// Package fleetpull contains the Cobra command tree for the fleetpull CLI.
package fleetpull

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Global flags
	flagVerbose int
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	// exitCode tracks the highest severity observed during a command run.
	exitCode int
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
	// notifyContext is overridable in tests.
	notifyContext = signal.NotifyContext
)

var rootCmd = &cobra.Command{
	Use:   "fleetpull [flags] <branch>",
	Short: "Switch a fleet of git repositories to one branch and pull upstream",
	Long: "fleetpull moves every repository listed in its config onto the given branch and pulls it from upstream.\n" +
		"A repository is left untouched when it is not a git repository, does not have the branch locally, or has uncommitted changes.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one branch name\nUsage: %s", cmd.UseLine())
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// `NO_COLOR` is a standard opt-out and should behave like --no-color.
		if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
			flagNoColor = true
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "print each git command before it runs")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "f", "", "override config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	addSyncFlags(rootCmd)
}

// normalizeFlagName keeps the historical --file spelling working.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "file" {
		name = "config"
	}
	return pflag.NormalizedName(name)
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly exit code.
// An interrupt cancels the command context; repositories already being
// processed finish and the rest are reported as not started.
func ExecuteWithExitCode() int {
	exitCode = 0
	ctx, stop := notifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 3
	}
	return exitCode
}

func raiseExitCode(code int) {
	// Keep the highest severity: 0 success, 1 untouched repositories, 3 fatal.
	if code > exitCode {
		exitCode = code
	}
}

func infof(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func debugf(cmd *cobra.Command, format string, args ...any) {
	if flagQuiet || flagVerbose <= 0 {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
