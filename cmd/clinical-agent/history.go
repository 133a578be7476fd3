package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and inspect past questions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openHistoryApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := app.store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSTARTED\tSTEPS\tSTATUS\tQUESTION")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
				r.ID, r.StartedAt.Format(time.DateTime), len(r.Steps), runStatus(r.Stopped, r.Error), truncate(r.Query, 60))
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with its intermediate steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openHistoryApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		run, err := app.store.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Question: %s\n", run.Query)
		fmt.Fprintf(out, "Started:  %s (%s)\n", run.StartedAt.Format(time.DateTime), run.Duration.Round(time.Millisecond))
		fmt.Fprintf(out, "Status:   %s\n\n", runStatus(run.Stopped, run.Error))
		printSteps(out, run.Steps)
		if run.Error != "" {
			fmt.Fprintf(out, "Error: %s\n", run.Error)
			return nil
		}
		fmt.Fprintf(out, "Answer: %s\n", run.Answer)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntP("limit", "n", 20, "number of runs to show")
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistoryApp(cmd *cobra.Command) (*App, error) {
	app, err := openApp(cmd)
	if err != nil {
		return nil, err
	}
	if !app.cfg.History.Enabled {
		app.Close()
		return nil, fmt.Errorf("history is disabled in %s", app.cfgLoader.FilePath())
	}
	if err := app.openHistory(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func runStatus(stopped bool, errMsg string) string {
	switch {
	case errMsg != "":
		return "failed"
	case stopped:
		return "stopped"
	default:
		return "answered"
	}
}
