package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gotrs-io/ui-smoke/internal/artifacts"
	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/config"
	"github.com/gotrs-io/ui-smoke/internal/exitcodes"
	"github.com/gotrs-io/ui-smoke/internal/history"
	"github.com/gotrs-io/ui-smoke/internal/metrics"
	"github.com/gotrs-io/ui-smoke/internal/report"
	"github.com/gotrs-io/ui-smoke/internal/scenario"
	"github.com/gotrs-io/ui-smoke/internal/steps"
	"github.com/gotrs-io/ui-smoke/internal/suite"
)

var runCmd = &cobra.Command{
	Use:   "run [scenario-id...]",
	Short: "Run smoke scenarios against the target",
	Long: `Run executes the selected scenarios (all of them when no id is given)
in one browser session and prints a summary table.

Exit status is 0 when every scenario passed, 1 when any scenario failed,
errored or was skipped, and 2 when the browser or target could not be
brought up.`,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.String("base-url", "http://127.0.0.1:8080", "Base URL of the application under test")
	f.Bool("autodetect", false, "Probe common local addresses when the base URL does not answer")
	f.Bool("wait-ready", true, "Wait for the target to answer before launching the browser")
	f.String("engine", "chromium", "Browser engine: chromium, firefox or webkit")
	f.Bool("headless", true, "Run the browser without a window")
	f.Duration("slow-mo", 0, "Delay between browser operations")
	f.Bool("install", false, "Install the browser engine before launching")
	f.String("policy", string(suite.FailFast), "Continuation policy: fail-fast or collect-all")
	f.Bool("reset-between", false, "Give every scenario a fresh page")
	f.String("scenarios", "", "YAML scenario file (default: built-in catalog)")
	f.String("artifacts", "verification", "Directory for screenshots and reports")
	f.String("metrics-file", "", "Write Prometheus textfile metrics to this path")
	f.String("history", "", "Record the run in this SQLite database")
	f.BoolP("verbose", "v", false, "Log harness internals to stderr")
	f.Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(runCmd)
}

// colorEnabled reports whether the summary table may use ANSI colours.
// fatih/color has already turned NoColor on for non-terminal output.
func colorEnabled(cfg *config.Config) bool {
	return !cfg.Logging.NoColor && !color.NoColor
}

func newLogger(verbose bool, prefix string) *log.Logger {
	var out io.Writer = io.Discard
	if verbose {
		out = os.Stderr
	}
	return log.New(out, prefix, log.LstdFlags)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	all, err := loadScenarios(cfg.Suite.ScenariosFile)
	if err != nil {
		return err
	}
	picked, missing := scenario.Select(all, args)
	if len(missing) > 0 {
		return fmt.Errorf("unknown scenario(s): %s", strings.Join(missing, ", "))
	}
	if len(picked) == 0 {
		return fmt.Errorf("no scenarios to run")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verbose := cfg.Logging.Verbose
	stdout := cmd.OutOrStdout()

	base := cfg.Target.BaseURL
	if cfg.Target.Autodetect {
		base = config.ResolveBaseURL(ctx, base, newLogger(verbose, "[TARGET] "))
	}
	if cfg.Target.WaitReady {
		if err := config.WaitForTarget(ctx, base, cfg.Target.ReadyTimeout, 0); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = exitcodes.EnvironmentErr
			return nil
		}
	}

	fs := afero.NewOsFs()
	writer := artifacts.NewWriter(fs, cfg.Artifacts.Dir, newLogger(verbose, "[ARTIFACTS] "))
	if !cfg.Artifacts.Screenshots {
		writer.Disable()
	}
	executor := steps.NewPageExecutor(base, cfg.StepTimeouts(), writer, newLogger(verbose, "[STEP] "))
	runner := scenario.NewRunner(executor, writer, newLogger(verbose, "[SCENARIO] "))
	launcher := browser.NewPlaywrightLauncher(cfg.BrowserOptions(), newLogger(verbose, "[BROWSER] "))

	suiteRunner := suite.NewRunner(launcher, runner, suite.Options{
		Policy:       policy,
		BaseURL:      base,
		ResetBetween: cfg.Suite.ResetBetween,
	}, suite.NewConsoleProgress(stdout, cfg.Logging.NoColor), newLogger(verbose, "[SUITE] "))

	rep, runErr := suiteRunner.Run(ctx, picked)

	fmt.Fprintln(stdout)
	fmt.Fprint(stdout, report.NewTableFormatter("UI smoke: "+base, colorEnabled(cfg)).Format(rep))

	for _, err := range publish(ctx, cfg, writer, rep) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}

	if runErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", runErr)
		exitCode = exitcodes.EnvironmentErr
		return nil
	}
	exitCode = exitcodes.ForReport(rep)
	return nil
}

// publish writes the report files, metrics and history entry. Failures are
// returned for display and never change the run's outcome.
func publish(ctx context.Context, cfg *config.Config, writer *artifacts.Writer, rep *suite.Report) []error {
	var errs []error
	if name := cfg.Artifacts.ReportJSON; name != "" {
		if err := report.WriteJSON(writer.Fs(), writer.Path(name), rep); err != nil {
			errs = append(errs, err)
		}
	}
	if name := cfg.Artifacts.ReportHTML; name != "" {
		if err := report.WriteHTML(writer.Fs(), writer.Path(name), rep); err != nil {
			errs = append(errs, err)
		}
	}
	if path := cfg.Metrics.Textfile; path != "" {
		m := metrics.New()
		m.Record(rep)
		if err := m.WriteTextfile(path); err != nil {
			errs = append(errs, err)
		}
	}
	if path := cfg.History.Path; path != "" {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := history.Open(ctx, path)
		if err != nil {
			return append(errs, err)
		}
		defer store.Close()
		if err := store.Save(ctx, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func loadScenarios(path string) ([]scenario.Scenario, error) {
	if path == "" {
		return scenario.Catalog(), nil
	}
	return scenario.LoadFile(path)
}
