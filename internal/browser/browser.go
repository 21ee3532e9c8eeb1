// Package browser owns the browser engine lifecycle and exposes the small
// page surface the verification steps drive.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrEnvironment is the sentinel matched by every EnvironmentError.
var ErrEnvironment = errors.New("browser environment unavailable")

// Page is the subset of page operations the harness needs. Implementations
// run against a single page and are not safe for concurrent use.
type Page interface {
	// Goto loads an absolute URL and waits for the load event. The returned
	// status is 0 when no response was observable.
	Goto(url string, timeout time.Duration) (int, error)
	// Count returns the number of nodes the locator matches.
	Count(loc LocatorSpec) (int, error)
	// VisibleCount returns the number of matched nodes that are visible.
	VisibleCount(loc LocatorSpec) (int, error)
	Click(loc LocatorSpec, timeout time.Duration) error
	Fill(loc LocatorSpec, value string, timeout time.Duration) error
	// Screenshot captures the current framebuffer as PNG bytes.
	Screenshot() ([]byte, error)
	URL() string
}

// Session is an acquired browser engine with one active page.
type Session interface {
	Page() Page
	// Reset replaces the page (and its context) with a fresh one.
	Reset() error
	// Release shuts the engine down. It is safe to call more than once.
	Release() error
}

// Launcher acquires sessions.
type Launcher interface {
	Acquire(ctx context.Context) (Session, error)
}

// EnvironmentError reports that the browser engine could not be brought up.
// It is fatal for a suite run and never retried.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("browser environment: %s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrEnvironment) match any EnvironmentError.
func (e *EnvironmentError) Is(target error) bool { return target == ErrEnvironment }

// WithSession acquires a session, hands it to fn and releases it on every
// exit path, including a panic inside fn. Acquire failures that are not
// already EnvironmentErrors are wrapped as one.
func WithSession(ctx context.Context, launcher Launcher, fn func(Session) error) (err error) {
	session, err := launcher.Acquire(ctx)
	if err != nil {
		var envErr *EnvironmentError
		if errors.As(err, &envErr) {
			return err
		}
		return &EnvironmentError{Op: "acquire", Err: err}
	}
	defer func() {
		if rerr := session.Release(); rerr != nil && err == nil {
			err = fmt.Errorf("failed to release browser session: %w", rerr)
		}
	}()
	return fn(session)
}
