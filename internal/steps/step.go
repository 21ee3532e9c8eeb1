// Package steps defines the closed set of scenario steps and executes them
// against a page.
package steps

import (
	"fmt"
	"time"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/wait"
)

// Step is one atomic UI action or assertion. The set of implementations is
// closed: only types in this package satisfy it.
type Step interface {
	Kind() string
	String() string
	step()
}

// Navigate loads BaseURL+URL, or URL itself when absolute.
type Navigate struct {
	URL string
}

// ClickByRole clicks the single element with the given role and accessible name.
type ClickByRole struct {
	Role string
	Name string
}

// FillByLabel types Value into the single control labelled Label.
type FillByLabel struct {
	Label string
	Value string
}

// AssertVisible waits for Locator to be visible. A zero Timeout uses the
// interaction default.
type AssertVisible struct {
	Locator browser.LocatorSpec
	Timeout time.Duration
}

// AssertNotVisible waits for Locator to have no visible match.
type AssertNotVisible struct {
	Locator browser.LocatorSpec
	Timeout time.Duration
}

// Wait waits for an arbitrary condition.
type Wait struct {
	Condition wait.Spec
	Timeout   time.Duration
}

// Screenshot captures the page to Path, relative to the artifact directory.
type Screenshot struct {
	Path string
}

// Pause lets the page settle for a fixed duration.
type Pause struct {
	Duration time.Duration
}

func (Navigate) step()         {}
func (ClickByRole) step()      {}
func (FillByLabel) step()      {}
func (AssertVisible) step()    {}
func (AssertNotVisible) step() {}
func (Wait) step()             {}
func (Screenshot) step()       {}
func (Pause) step()            {}

func (Navigate) Kind() string         { return "navigate" }
func (ClickByRole) Kind() string      { return "click" }
func (FillByLabel) Kind() string      { return "fill" }
func (AssertVisible) Kind() string    { return "assert_visible" }
func (AssertNotVisible) Kind() string { return "assert_not_visible" }
func (Wait) Kind() string             { return "wait" }
func (Screenshot) Kind() string       { return "screenshot" }
func (Pause) Kind() string            { return "pause" }

func (s Navigate) String() string { return "navigate " + s.URL }
func (s ClickByRole) String() string {
	return "click " + browser.Role(s.Role, s.Name).String()
}
func (s FillByLabel) String() string {
	return fmt.Sprintf("fill %s with %q", browser.Label(s.Label).String(), s.Value)
}
func (s AssertVisible) String() string    { return "expect visible " + s.Locator.String() }
func (s AssertNotVisible) String() string { return "expect hidden " + s.Locator.String() }
func (s Wait) String() string             { return "wait for " + s.Condition.String() }
func (s Screenshot) String() string       { return "screenshot " + s.Path }
func (s Pause) String() string            { return "pause " + s.Duration.String() }

// Validate checks a step's required fields.
func Validate(s Step) error {
	switch st := s.(type) {
	case Navigate:
		if st.URL == "" {
			return fmt.Errorf("navigate requires a url")
		}
	case ClickByRole:
		return browser.Role(st.Role, st.Name).Validate()
	case FillByLabel:
		return browser.Label(st.Label).Validate()
	case AssertVisible:
		return st.Locator.Validate()
	case AssertNotVisible:
		return st.Locator.Validate()
	case Wait:
		return st.Condition.Validate()
	case Screenshot:
		if st.Path == "" {
			return fmt.Errorf("screenshot requires a path")
		}
	case Pause:
		if st.Duration < 0 {
			return fmt.Errorf("pause must not be negative")
		}
	case nil:
		return fmt.Errorf("nil step")
	default:
		return fmt.Errorf("unsupported step %T", s)
	}
	return nil
}
