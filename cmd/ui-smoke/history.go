package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gotrs-io/ui-smoke/internal/config"
	"github.com/gotrs-io/ui-smoke/internal/history"
	"github.com/gotrs-io/ui-smoke/internal/report"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded suite runs",
	Long: `History lists the most recent runs recorded with --history. Given a
run id it shows that run's scenario results instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("history", "", "SQLite database written by run --history")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("no history database configured (use --history)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())

	if len(args) == 1 {
		rows, err := store.Results(ctx, args[0])
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return fmt.Errorf("run %s not found", args[0])
		}
		t.SetTitle("Run " + args[0])
		t.AppendHeader(table.Row{"#", "Scenario", "Status", "Step", "Failure", "Duration", "Reason"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Position + 1, r.ScenarioID, r.Status, report.FormatStep(r.FailedStep), r.FailureKind,
				report.FormatDuration(time.Duration(r.ElapsedMS) * time.Millisecond), r.Reason})
		}
		t.Render()
		return nil
	}

	runs, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	t.AppendHeader(table.Row{"Run", "Started", "Target", "Policy", "Passed", "Failed", "Errored", "Skipped", "Duration"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.RunID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.BaseURL, r.Policy,
			r.Passed, r.Failed, r.Errored, r.Skipped, report.FormatDuration(time.Duration(r.ElapsedMS) * time.Millisecond)})
	}
	t.Render()
	return nil
}
