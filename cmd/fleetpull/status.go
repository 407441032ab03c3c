package fleetpull

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/skaphos/fleetpull/internal/cliio"
	"github.com/skaphos/fleetpull/internal/engine"
	"github.com/skaphos/fleetpull/internal/model"
	"github.com/skaphos/fleetpull/internal/termstyle"
)

var statusCmd = &cobra.Command{
	Use:   "status [branch]",
	Short: "Show branch, local changes and stashes for every repository",
	Long: "Inspects every configured repository without changing anything.\n" +
		"When a branch is given, the TARGET column shows whether it exists locally.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		branch := ""
		if len(args) == 1 {
			branch = args[0]
		}

		fl, err := loadFleet(cmd)
		if err != nil {
			return err
		}
		eng := engine.New(fl.cfg, newAdapter(newRunner(cmd, fl.cfg, 0)), nil)
		states := eng.InspectFleet(cmd.Context(), fl.repos, branch, concurrency)

		if statesNeedAttention(states, branch) {
			raiseExitCode(1)
		}
		if format != formatText {
			return writeStructured(cmd.OutOrStdout(), format, states)
		}
		color := termstyle.Enabled(cmd.OutOrStdout(), flagNoColor)
		return writeStatusTable(cmd, states, branch, color, noHeaders)
	},
}

func init() {
	addFormatFlag(statusCmd)
	addMatchFlag(statusCmd)
	addConcurrencyFlag(statusCmd)
	statusCmd.Flags().Bool("no-headers", false, "when using text format, do not print headers")
	rootCmd.AddCommand(statusCmd)
}

// statesNeedAttention reports whether a sync onto branch would leave any
// repository untouched.
func statesNeedAttention(states []model.RepositoryState, branch string) bool {
	for _, st := range states {
		if st.Error != "" || !st.IsValidRepo || st.HasLocalChanges {
			return true
		}
		if branch != "" && !st.BranchExists {
			return true
		}
	}
	return false
}

func writeStatusTable(cmd *cobra.Command, states []model.RepositoryState, branch string, color, noHeaders bool) error {
	headers := []string{"NAME", "BRANCH", "DIRTY", "STASHES", "PATH"}
	if branch != "" {
		headers = []string{"NAME", "BRANCH", "TARGET", "DIRTY", "STASHES", "PATH"}
	}
	rows := make([][]string, 0, len(states))
	for _, st := range states {
		current := st.CurrentBranch
		switch {
		case st.Error != "":
			current = termstyle.Colorize(color, "error: "+st.Error, termstyle.Red)
		case !st.IsValidRepo:
			current = termstyle.Colorize(color, "not a repository", termstyle.Red)
		case current == "":
			current = "-"
		}

		dirty := "no"
		if st.HasLocalChanges {
			dirty = termstyle.Colorize(color, "yes", termstyle.Red)
		}
		stashes := strconv.Itoa(st.StashCount)
		if st.StashCount > 0 {
			stashes = termstyle.Colorize(color, stashes, termstyle.Brown)
		}

		row := []string{st.Repository.Name, current}
		if branch != "" {
			row = append(row, targetCell(st, branch, color))
		}
		row = append(row, dirty, stashes, st.Repository.Path)
		rows = append(rows, row)
	}
	return cliio.WriteTable(cmd.OutOrStdout(), noHeaders, headers, rows)
}

func targetCell(st model.RepositoryState, branch string, color bool) string {
	switch {
	case !st.IsValidRepo || st.Error != "":
		return "-"
	case !st.BranchExists:
		return termstyle.Colorize(color, "missing", termstyle.Red)
	case st.CurrentBranch == branch:
		return termstyle.Colorize(color, "current", termstyle.Green)
	default:
		return "present"
	}
}
