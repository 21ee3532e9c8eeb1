// Package exitcodes defines the process exit codes of ui-smoke.
//
// * Success (0): every scenario passed
// * ScenarioFailure (1): at least one scenario failed, errored or was skipped
// * EnvironmentErr (2): the browser or target could not be brought up, or the
//   command was misused
package exitcodes

import "github.com/gotrs-io/ui-smoke/internal/suite"

const (
	Success         = 0
	ScenarioFailure = 1
	EnvironmentErr  = 2
)

// ForReport maps a finished report to an exit code.
func ForReport(r *suite.Report) int {
	if r == nil {
		return EnvironmentErr
	}
	if r.OK() {
		return Success
	}
	return ScenarioFailure
}
