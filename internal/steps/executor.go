package steps

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/artifacts"
	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/wait"
)

// Executor runs a single step. A non-nil error is an unexpected engine
// failure, distinct from a step Failure carried in the Outcome.
type Executor interface {
	Execute(ctx context.Context, page browser.Page, step Step) (Outcome, error)
}

// Timeouts bounds each category of step.
type Timeouts struct {
	Navigation   time.Duration
	Interaction  time.Duration
	PollInterval time.Duration
}

// PageExecutor executes steps against a browser.Page.
type PageExecutor struct {
	baseURL   string
	timeouts  Timeouts
	artifacts *artifacts.Writer
	poller    wait.Poller
	logger    *log.Logger
}

// NewPageExecutor creates an executor. Zero timeouts fall back to the wait
// package defaults; a nil logger discards output.
func NewPageExecutor(baseURL string, timeouts Timeouts, w *artifacts.Writer, logger *log.Logger) *PageExecutor {
	if timeouts.Navigation <= 0 {
		timeouts.Navigation = wait.DefaultReadyTimeout
	}
	if timeouts.Interaction <= 0 {
		timeouts.Interaction = wait.DefaultInteractionTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &PageExecutor{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeouts:  timeouts,
		artifacts: w,
		poller:    wait.Poller{Interval: timeouts.PollInterval},
		logger:    logger,
	}
}

// Execute dispatches on the step variant.
func (e *PageExecutor) Execute(ctx context.Context, page browser.Page, step Step) (Outcome, error) {
	e.logger.Printf("Executing: %s", step)
	switch s := step.(type) {
	case Navigate:
		return e.navigate(page, s)
	case ClickByRole:
		loc := browser.Role(s.Role, s.Name)
		if out, err := e.resolveOne(ctx, page, loc); err != nil || !out.OK() {
			return out, err
		}
		if err := page.Click(loc, e.timeouts.Interaction); err != nil {
			return Ok, fmt.Errorf("click %s: %w", loc, err)
		}
		return Ok, nil
	case FillByLabel:
		loc := browser.Label(s.Label)
		if out, err := e.resolveOne(ctx, page, loc); err != nil || !out.OK() {
			return out, err
		}
		if err := page.Fill(loc, s.Value, e.timeouts.Interaction); err != nil {
			return Ok, fmt.Errorf("fill %s: %w", loc, err)
		}
		return Ok, nil
	case AssertVisible:
		return e.await(ctx, page, wait.ElementVisible(s.Locator), s.Timeout), nil
	case AssertNotVisible:
		return e.await(ctx, page, wait.ElementHidden(s.Locator), s.Timeout), nil
	case Wait:
		return e.await(ctx, page, s.Condition.Condition(), s.Timeout), nil
	case Screenshot:
		if e.artifacts == nil {
			return Ok, nil
		}
		if path := e.artifacts.TryCapture(page, s.Path); path != "" {
			return Outcome{Artifacts: []string{path}}, nil
		}
		return Ok, nil
	case Pause:
		return e.pause(ctx, s.Duration), nil
	default:
		return Ok, fmt.Errorf("unsupported step %T", step)
	}
}

// URL resolves a navigation target against the base URL.
func (e *PageExecutor) URL(target string) string {
	if u, err := url.Parse(target); err == nil && u.IsAbs() {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return e.baseURL + target
}

func (e *PageExecutor) navigate(page browser.Page, s Navigate) (Outcome, error) {
	target := e.URL(s.URL)
	status, err := page.Goto(target, e.timeouts.Navigation)
	if err != nil {
		if strings.Contains(err.Error(), "ERR_TOO_MANY_REDIRECTS") {
			return failed(KindNavigation, err, "redirect loop navigating to %s", target), nil
		}
		return failed(KindNavigation, err, "could not load %s", target), nil
	}
	if status >= 500 {
		out := failed(KindNavigation, nil, "%s responded with status %d", target, status)
		out.Failure.Status = status
		return out, nil
	}
	return Ok, nil
}

// resolveOne waits briefly for loc to match and insists on a single match.
func (e *PageExecutor) resolveOne(ctx context.Context, page browser.Page, loc browser.LocatorSpec) (Outcome, error) {
	var n int
	var countErr error
	res := wait.Poll(ctx, e.timeouts.Interaction, e.timeouts.PollInterval, func(context.Context) (bool, error) {
		n, countErr = page.Count(loc)
		return n > 0, countErr
	})
	if countErr != nil {
		return Ok, fmt.Errorf("resolve %s: %w", loc, countErr)
	}
	switch {
	case res.Outcome == wait.TimedOut || n == 0:
		return failed(KindNotFound, nil, "%s matched nothing within %s", loc, e.timeouts.Interaction), nil
	case n > 1:
		return failed(KindAmbiguous, nil, "%s matched %d elements", loc, n), nil
	}
	return Ok, nil
}

func (e *PageExecutor) await(ctx context.Context, page browser.Page, cond wait.Condition, timeout time.Duration) Outcome {
	if timeout <= 0 {
		timeout = e.timeouts.Interaction
	}
	res := e.poller.Await(ctx, page, cond, timeout)
	if res.Outcome == wait.TimedOut {
		return failed(KindAssertionTimeout, res.LastErr, "%s not reached after %s", cond, timeout)
	}
	return Ok
}

func (e *PageExecutor) pause(ctx context.Context, d time.Duration) Outcome {
	if d <= 0 {
		return Ok
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	return Ok
}
