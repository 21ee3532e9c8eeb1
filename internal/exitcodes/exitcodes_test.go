package exitcodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gotrs-io/ui-smoke/internal/suite"
)

func TestForReport(t *testing.T) {
	assert.Equal(t, EnvironmentErr, ForReport(nil))
	assert.Equal(t, Success, ForReport(&suite.Report{Passed: 3}))
	assert.Equal(t, ScenarioFailure, ForReport(&suite.Report{Passed: 2, Failed: 1}))
	assert.Equal(t, ScenarioFailure, ForReport(&suite.Report{Errored: 1}))
	assert.Equal(t, ScenarioFailure, ForReport(&suite.Report{Passed: 1, Skipped: 1}))
}
