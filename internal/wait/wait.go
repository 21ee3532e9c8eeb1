// Package wait implements bounded polling for asynchronous UI readiness.
//
// Every wait has a deadline: a non-positive timeout falls back to
// DefaultInteractionTimeout. A timed-out wait is an outcome, not an error;
// callers decide what it means.
package wait

import (
	"context"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/browser"
)

const (
	DefaultInterval           = 100 * time.Millisecond
	DefaultReadyTimeout       = 30 * time.Second
	DefaultInteractionTimeout = 5 * time.Second
)

// Outcome is the terminal state of a wait.
type Outcome int

const (
	Satisfied Outcome = iota
	TimedOut
)

func (o Outcome) String() string {
	if o == Satisfied {
		return "satisfied"
	}
	return "timed out"
}

// Result describes how a wait ended.
type Result struct {
	Outcome Outcome
	Elapsed time.Duration
	Polls   int
	// LastErr is the most recent check error, if any. Check errors are
	// treated as "not yet" and do not stop polling.
	LastErr error
}

// CheckFunc reports whether the awaited state holds.
type CheckFunc func(ctx context.Context) (bool, error)

// Poll evaluates check immediately and then once per interval until it
// holds or timeout elapses. It never returns later than timeout plus the
// duration of one in-flight check.
func Poll(ctx context.Context, timeout, interval time.Duration, check CheckFunc) Result {
	if timeout <= 0 {
		timeout = DefaultInteractionTimeout
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var res Result
	for {
		res.Polls++
		ok, err := check(ctx)
		if err != nil {
			res.LastErr = err
		} else if ok {
			res.Outcome = Satisfied
			res.Elapsed = time.Since(start)
			return res
		}

		select {
		case <-ctx.Done():
			res.Outcome = TimedOut
			res.Elapsed = time.Since(start)
			return res
		case <-ticker.C:
		}
	}
}

// Poller binds a polling interval to page conditions.
type Poller struct {
	Interval time.Duration
}

// Await polls cond against page until it holds or timeout elapses. A
// single page call already in flight at the deadline is not interrupted.
func (p Poller) Await(ctx context.Context, page browser.Page, cond Condition, timeout time.Duration) Result {
	return Poll(ctx, timeout, p.Interval, func(ctx context.Context) (bool, error) {
		return cond.Check(ctx, page)
	})
}

// Await polls cond with the default interval.
func Await(ctx context.Context, page browser.Page, cond Condition, timeout time.Duration) Result {
	return Poller{}.Await(ctx, page, cond, timeout)
}
