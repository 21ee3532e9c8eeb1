package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/gotrs-io/ui-smoke/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		all, err := loadScenarios(cfg.Suite.ScenariosFile)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Name", "Steps", "Screenshot"})
		for _, sc := range all {
			n := sc.Len()
			if sc.Terminal() != nil {
				n++
			}
			t.AppendRow(table.Row{sc.ID(), sc.Name(), n, sc.ScreenshotTemplate()})
		}
		t.Render()
		return nil
	},
}

func init() {
	listCmd.Flags().String("scenarios", "", "YAML scenario file (default: built-in catalog)")
	rootCmd.AddCommand(listCmd)
}
