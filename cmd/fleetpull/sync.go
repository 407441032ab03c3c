package fleetpull

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/fleetpull/internal/cliio"
	"github.com/skaphos/fleetpull/internal/engine"
	"github.com/skaphos/fleetpull/internal/model"
	"github.com/skaphos/fleetpull/internal/termstyle"
)

func runSync(cmd *cobra.Command, branch string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	noFetch, _ := cmd.Flags().GetBool("no-fetch")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	timeout, _ := cmd.Flags().GetInt("timeout")
	strict, _ := cmd.Flags().GetBool("strict")
	if timeout < 0 {
		return fmt.Errorf("--timeout must not be negative (got %d)", timeout)
	}

	fl, err := loadFleet(cmd)
	if err != nil {
		return err
	}

	// Progress lines are the text output; structured formats keep stdout clean.
	progress := cmd.OutOrStdout()
	if format != formatText {
		progress = cmd.ErrOrStderr()
	}
	color := termstyle.Enabled(progress, flagNoColor)
	emit := func(ev model.Event) {
		if flagQuiet {
			return
		}
		_ = cliio.WriteEvent(progress, ev, color)
	}

	adapter := newAdapter(newRunner(cmd, fl.cfg, timeout))
	debugf(cmd, "syncing %d repositories with %s", len(fl.repos), adapter.Name())
	eng := engine.New(fl.cfg, adapter, engine.ReporterFunc(emit))
	emit(model.Event{Level: model.LevelInfo, Text: "Switching to " + branch})
	result, err := eng.RunFleet(cmd.Context(), engine.FleetOptions{
		Branch:       branch,
		Repositories: fl.repos,
		Fetch:        fl.cfg.Fetch && !noFetch,
		Concurrency:  concurrency,
	})
	if err != nil {
		return err
	}

	if format != formatText {
		if err := writeStructured(cmd.OutOrStdout(), format, result); err != nil {
			return err
		}
	}
	emit(model.Event{Level: model.LevelInfo, Text: result.Summary()})

	if cmd.Context().Err() != nil {
		infof(cmd, "interrupted")
		raiseExitCode(1)
	}
	if strict && result.Failed > 0 {
		raiseExitCode(1)
	}
	return nil
}
