// Package scenario models verification scenarios and runs them one step at
// a time, stopping at the first failure.
package scenario

import (
	"fmt"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/steps"
)

// Scenario is an ordered list of steps describing one user-facing flow.
// Build it with New; the step slice is copied so later changes by the
// caller do not leak in.
type Scenario struct {
	id         string
	name       string
	steps      []steps.Step
	terminal   steps.Step
	screenshot string
}

// Option customises a Scenario at construction.
type Option func(*Scenario)

// WithName sets the display name used in progress output.
func WithName(name string) Option { return func(s *Scenario) { s.name = name } }

// WithTerminal sets the final assertion run after every step has passed.
func WithTerminal(step steps.Step) Option { return func(s *Scenario) { s.terminal = step } }

// WithScreenshot sets the terminal screenshot template. "{id}" expands to
// the slug of the scenario id.
func WithScreenshot(template string) Option { return func(s *Scenario) { s.screenshot = template } }

// New builds an immutable scenario.
func New(id string, stepList []steps.Step, opts ...Option) Scenario {
	s := Scenario{
		id:    id,
		name:  id,
		steps: append([]steps.Step(nil), stepList...),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s Scenario) ID() string                 { return s.id }
func (s Scenario) Name() string               { return s.name }
func (s Scenario) Terminal() steps.Step       { return s.terminal }
func (s Scenario) ScreenshotTemplate() string { return s.screenshot }
func (s Scenario) Len() int                   { return len(s.steps) }

// Steps returns a copy of the step list.
func (s Scenario) Steps() []steps.Step { return append([]steps.Step(nil), s.steps...) }

// Validate checks the id and every step.
func (s Scenario) Validate() error {
	if s.id == "" {
		return fmt.Errorf("scenario id is required")
	}
	if len(s.steps) == 0 && s.terminal == nil {
		return fmt.Errorf("scenario %s has no steps", s.id)
	}
	for i, st := range s.steps {
		if err := steps.Validate(st); err != nil {
			return fmt.Errorf("scenario %s step %d: %w", s.id, i, err)
		}
	}
	if s.terminal != nil {
		if err := steps.Validate(s.terminal); err != nil {
			return fmt.Errorf("scenario %s terminal assertion: %w", s.id, err)
		}
	}
	return nil
}

// Status is the scenario state machine: Pending → Running → one of
// Passed, Failed or Errored. Skipped is assigned by the suite.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusErrored Status = "errored"
	StatusSkipped Status = "skipped"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped:
		return true
	}
	return false
}

// RunResult is the outcome of one scenario.
type RunResult struct {
	ScenarioID  string        `json:"scenario_id"`
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	FailedStep  int           `json:"failed_step"`
	StepKind    string        `json:"step_kind,omitempty"`
	Failure     string        `json:"failure_kind,omitempty"`
	Started     time.Time     `json:"started"`
	Elapsed     time.Duration `json:"elapsed"`
	Screenshots []string      `json:"screenshots,omitempty"`
}

// Passed reports whether the scenario passed.
func (r RunResult) Passed() bool { return r.Status == StatusPassed }

// Skipped builds the result for a scenario that never ran.
func Skipped(s Scenario, reason string) RunResult {
	return RunResult{
		ScenarioID: s.id,
		Name:       s.name,
		Status:     StatusSkipped,
		Reason:     reason,
		FailedStep: -1,
	}
}
