package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/config"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the Playwright driver and browser engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, cmd.Flags())
		if err != nil {
			return err
		}
		if err := browser.Install(cfg.Browser.Engine); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Installed %s\n", cfg.Browser.Engine)
		return nil
	},
}

func init() {
	installCmd.Flags().String("engine", "chromium", "Browser engine: chromium, firefox or webkit")
	rootCmd.AddCommand(installCmd)
}
