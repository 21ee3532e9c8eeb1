// Package suite runs an ordered list of scenarios against one shared browser
// session and aggregates the results.
package suite

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/scenario"
)

// Policy decides whether the suite continues after a scenario fails.
type Policy string

const (
	FailFast   Policy = "fail-fast"
	CollectAll Policy = "collect-all"
)

// ParsePolicy accepts the canonical names and a few spellings.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fail-fast", "failfast", "fail_fast", "":
		return FailFast, nil
	case "collect-all", "collectall", "collect_all":
		return CollectAll, nil
	}
	return "", fmt.Errorf("unknown continuation policy %q (want fail-fast or collect-all)", s)
}

// Options configures a suite run.
type Options struct {
	Policy  Policy
	BaseURL string
	// ResetBetween gives each scenario after the first a fresh page.
	ResetBetween bool
}

// Report aggregates the results of one suite run.
type Report struct {
	RunID   string               `json:"run_id"`
	BaseURL string               `json:"base_url"`
	Policy  Policy               `json:"policy"`
	Started time.Time            `json:"started"`
	Elapsed time.Duration        `json:"elapsed"`
	Results []scenario.RunResult `json:"results"`
	Passed  int                  `json:"passed"`
	Failed  int                  `json:"failed"`
	Errored int                  `json:"errored"`
	Skipped int                  `json:"skipped"`
}

// OK reports whether every scenario passed.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errored == 0 && r.Skipped == 0
}

// Total is the number of scenarios in the report.
func (r *Report) Total() int { return len(r.Results) }

func (r *Report) add(res scenario.RunResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case scenario.StatusPassed:
		r.Passed++
	case scenario.StatusFailed:
		r.Failed++
	case scenario.StatusErrored:
		r.Errored++
	case scenario.StatusSkipped:
		r.Skipped++
	}
}

// ScenarioRunner runs one scenario against a page.
type ScenarioRunner interface {
	Run(ctx context.Context, page browser.Page, sc scenario.Scenario) scenario.RunResult
}

// Runner executes suites.
type Runner struct {
	launcher browser.Launcher
	runner   ScenarioRunner
	opts     Options
	progress Progress
	logger   *log.Logger
}

// NewRunner creates a suite runner. progress and logger may be nil.
func NewRunner(launcher browser.Launcher, runner ScenarioRunner, opts Options, progress Progress, logger *log.Logger) *Runner {
	if opts.Policy == "" {
		opts.Policy = FailFast
	}
	if progress == nil {
		progress = nopProgress{}
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{launcher: launcher, runner: runner, opts: opts, progress: progress, logger: logger}
}

// Run acquires one session, runs the scenarios in order under the policy and
// releases the session on every exit path. The error is non-nil only when
// the browser environment could not be brought up (or released); scenario
// failures are reported in the Report.
func (s *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		BaseURL: s.opts.BaseURL,
		Policy:  s.opts.Policy,
		Started: time.Now(),
	}
	s.logger.Printf("Starting suite %s: %d scenarios, policy %s", report.RunID, len(scenarios), s.opts.Policy)

	err := browser.WithSession(ctx, s.launcher, func(session browser.Session) error {
		return s.runAll(ctx, session, scenarios, report)
	})
	report.Elapsed = time.Since(report.Started)
	if err != nil {
		s.logger.Printf("Suite %s aborted: %v", report.RunID, err)
		for i := len(report.Results); i < len(scenarios); i++ {
			report.add(scenario.Skipped(scenarios[i], "suite aborted"))
		}
		return report, err
	}
	s.logger.Printf("Suite %s finished in %v: %d passed, %d failed, %d errored, %d skipped",
		report.RunID, report.Elapsed, report.Passed, report.Failed, report.Errored, report.Skipped)
	return report, nil
}

func (s *Runner) runAll(ctx context.Context, session browser.Session, scenarios []scenario.Scenario, report *Report) error {
	for i, sc := range scenarios {
		if i > 0 && s.opts.ResetBetween {
			if err := session.Reset(); err != nil {
				return &browser.EnvironmentError{Op: "reset", Err: err}
			}
		}

		s.progress.Started(sc)
		res := s.runner.Run(ctx, session.Page(), sc)
		report.add(res)
		s.progress.Finished(res)

		if !res.Passed() && s.opts.Policy == FailFast {
			for _, rest := range scenarios[i+1:] {
				skipped := scenario.Skipped(rest, fmt.Sprintf("skipped after %s did not pass", sc.ID()))
				report.add(skipped)
				s.progress.Finished(skipped)
			}
			return nil
		}
	}
	return nil
}
