package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/ui-smoke/internal/exitcodes"
	"github.com/gotrs-io/ui-smoke/internal/version"
)

var (
	configFile string
	exitCode   = exitcodes.Success
)

var rootCmd = &cobra.Command{
	Use:   "ui-smoke",
	Short: "Browser smoke tests for web applications",
	Long: `ui-smoke drives a real browser through short scripted scenarios
against a running web application and reports which ones passed.

Scenarios come from the built-in catalog or from a YAML file. Every
scenario leaves a screenshot in the artifacts directory.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ui-smoke %s\n", version.Full())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitcodes.EnvironmentErr)
	}
	os.Exit(exitCode)
}
