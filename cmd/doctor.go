package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nibzard/todo-cli/internal/app"
	"github.com/nibzard/todo-cli/internal/logging"
)

func newDoctorCmd(rt *runtime) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the data directory and validate its files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doctor(rt, verbose)
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	return cmd
}

func doctor(rt *runtime, verbose bool) error {
	fmt.Fprintln(rt.out, "Todo Doctor")
	fmt.Fprintln(rt.out, "===========")
	fmt.Fprintln(rt.out)

	if rt.cfg.ConfigFile != "" {
		fmt.Fprintf(rt.out, "Config file: %s\n\n", rt.cfg.ConfigFile)
	}

	checks := app.Diagnose(rt.cfg.Dir())
	for _, c := range checks {
		fmt.Fprintf(rt.out, "%s: %s\n", c.Name, c.Path)
		switch c.Status {
		case app.CheckOK:
			fmt.Fprintf(rt.out, "  %s OK\n", rt.styles.Success.Render("✓"))
		case app.CheckMissing:
			fmt.Fprintf(rt.out, "  %s Not found (created on first use)\n", rt.styles.Warning.Render("!"))
		case app.CheckFailed:
			fmt.Fprintf(rt.out, "  %s Failed:\n", rt.styles.Critical.Render("✗"))
			for _, err := range c.Errors {
				fmt.Fprintf(rt.out, "     - %v\n", err)
			}
		}
	}

	if verbose {
		runs, err := logging.FindLogRuns(rt.cfg.Dir().LogsPath())
		if err != nil {
			fmt.Fprintf(rt.out, "\nRun logs: %v\n", err)
		} else {
			fmt.Fprintf(rt.out, "\nRun logs: %d in %s\n", len(runs), rt.cfg.Dir().LogsPath())
			for _, run := range runs {
				fmt.Fprintf(rt.out, "  - %s (%s)\n", run.Path, formatTime(run.ModTime))
			}
		}
	}
	fmt.Fprintln(rt.out)

	if app.Healthy(checks) {
		fmt.Fprintf(rt.out, "%s All checks passed!\n", rt.styles.Success.Render("✓"))
		return nil
	}
	fmt.Fprintf(rt.out, "%s Some checks failed. todo may not work correctly.\n", rt.styles.Warning.Render("!"))
	return errors.New("doctor checks failed")
}
