package steps

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a step failed.
type FailureKind string

const (
	KindNavigation       FailureKind = "navigation"
	KindNotFound         FailureKind = "locator_not_found"
	KindAmbiguous        FailureKind = "locator_ambiguous"
	KindAssertionTimeout FailureKind = "assertion_timeout"
)

var (
	ErrNavigation       = errors.New("navigation failed")
	ErrNotFound         = errors.New("locator matched no element")
	ErrAmbiguous        = errors.New("locator matched more than one element")
	ErrAssertionTimeout = errors.New("assertion timed out")
)

var kindSentinels = map[FailureKind]error{
	KindNavigation:       ErrNavigation,
	KindNotFound:         ErrNotFound,
	KindAmbiguous:        ErrAmbiguous,
	KindAssertionTimeout: ErrAssertionTimeout,
}

// Failure is a step-level failure. It stops the current scenario only.
type Failure struct {
	Kind   FailureKind
	Detail string
	// Status is the HTTP status for navigation failures, when observable.
	Status int
	Err    error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Is matches the sentinel for the failure kind.
func (f *Failure) Is(target error) bool {
	return kindSentinels[f.Kind] == target
}

func (f *Failure) Unwrap() error { return f.Err }

// Outcome is the result of one step: Ok when Failure is nil.
type Outcome struct {
	Failure *Failure
	// Artifacts lists files the step wrote, such as screenshots.
	Artifacts []string
}

// OK reports whether the step succeeded.
func (o Outcome) OK() bool { return o.Failure == nil }

// Ok is the successful outcome.
var Ok = Outcome{}

func failed(kind FailureKind, err error, format string, args ...any) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}}
}
