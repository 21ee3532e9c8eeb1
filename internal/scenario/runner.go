package scenario

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/artifacts"
	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/steps"
)

// Runner executes scenarios step by step.
type Runner struct {
	exec      steps.Executor
	artifacts *artifacts.Writer
	logger    *log.Logger
}

// NewRunner creates a runner. w may be nil to skip screenshots.
func NewRunner(exec steps.Executor, w *artifacts.Writer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{exec: exec, artifacts: w, logger: logger}
}

// Run executes the scenario's steps in order against page. The first
// failing step ends the scenario; no later step runs. Screenshot problems
// are logged and never change the returned status.
func (r *Runner) Run(ctx context.Context, page browser.Page, sc Scenario) (res RunResult) {
	res = RunResult{
		ScenarioID: sc.id,
		Name:       sc.name,
		Status:     StatusPending,
		FailedStep: -1,
		Started:    time.Now(),
	}
	defer func() { res.Elapsed = time.Since(res.Started) }()

	res.Status = StatusRunning
	r.logger.Printf("Running scenario %s (%d steps)", sc.id, len(sc.steps))

	all := sc.Steps()
	if sc.terminal != nil {
		all = append(all, sc.terminal)
	}
	for i, st := range all {
		out, err := r.execute(ctx, page, st)
		res.Screenshots = append(res.Screenshots, out.Artifacts...)
		if err != nil {
			res.Status = StatusErrored
			res.FailedStep = i
			res.StepKind = st.Kind()
			res.Reason = fmt.Sprintf("step %d (%s): %v", i, st, err)
			r.logger.Printf("Scenario %s errored: %s", sc.id, res.Reason)
			r.captureError(page, sc, &res)
			return res
		}
		if !out.OK() {
			res.Status = StatusFailed
			res.FailedStep = i
			res.StepKind = st.Kind()
			res.Failure = string(out.Failure.Kind)
			res.Reason = fmt.Sprintf("step %d (%s): %v", i, st, out.Failure)
			r.logger.Printf("Scenario %s failed: %s", sc.id, res.Reason)
			r.captureError(page, sc, &res)
			return res
		}
	}

	res.Status = StatusPassed
	if r.artifacts != nil {
		if path := r.artifacts.TryCapture(page, artifacts.Expand(sc.screenshot, sc.id)); path != "" {
			res.Screenshots = append(res.Screenshots, path)
		}
	}
	r.logger.Printf("Scenario %s passed", sc.id)
	return res
}

// execute runs one step, converting a panic from the engine into an error.
func (r *Runner) execute(ctx context.Context, page browser.Page, st steps.Step) (out steps.Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.exec.Execute(ctx, page, st)
}

func (r *Runner) captureError(page browser.Page, sc Scenario, res *RunResult) {
	if r.artifacts == nil {
		return
	}
	path := func() (path string) {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Printf("Error screenshot skipped: %v", p)
				path = ""
			}
		}()
		return r.artifacts.TryCapture(page, artifacts.Slug(sc.id)+"_error.png")
	}()
	if path != "" {
		res.Screenshots = append(res.Screenshots, path)
	}
}
