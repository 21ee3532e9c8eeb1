package scenario

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/steps"
	"github.com/gotrs-io/ui-smoke/internal/wait"
)

// File is the YAML layout of a scenario file.
type File struct {
	Scenarios []ScenarioDoc `yaml:"scenarios"`
	Sweeps    []SweepDoc    `yaml:"sweeps"`
}

type ScenarioDoc struct {
	ID         string    `yaml:"id"`
	Name       string    `yaml:"name"`
	Screenshot string    `yaml:"screenshot"`
	Steps      []StepDoc `yaml:"steps"`
	Expect     *StepDoc  `yaml:"expect"`
}

type SweepDoc struct {
	ID         string   `yaml:"id"`
	Start      string   `yaml:"start"`
	Role       string   `yaml:"role"`
	Settle     string   `yaml:"settle"`
	Screenshot string   `yaml:"screenshot"`
	Targets    []string `yaml:"targets"`
}

// StepDoc holds exactly one step key.
type StepDoc struct {
	Navigate         string      `yaml:"navigate"`
	Click            *LocatorDoc `yaml:"click"`
	Fill             *FillDoc    `yaml:"fill"`
	AssertVisible    *LocatorDoc `yaml:"assert_visible"`
	AssertNotVisible *LocatorDoc `yaml:"assert_not_visible"`
	Wait             *WaitDoc    `yaml:"wait"`
	Screenshot       string      `yaml:"screenshot"`
	Pause            string      `yaml:"pause"`
}

type LocatorDoc struct {
	Role    string `yaml:"role"`
	Name    string `yaml:"name"`
	Label   string `yaml:"label"`
	CSS     string `yaml:"css"`
	TestID  string `yaml:"testid"`
	Text    string `yaml:"text"`
	Exact   bool   `yaml:"exact"`
	AtLeast int    `yaml:"at_least"`
	Timeout string `yaml:"timeout"`
}

type FillDoc struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type WaitDoc struct {
	Condition  string `yaml:"condition"`
	LocatorDoc `yaml:",inline"`
	Min        *int `yaml:"min"`
	Max        *int `yaml:"max"`
	Equals     *int `yaml:"equals"`
}

// LoadFile reads scenarios from a YAML file.
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a scenario file. "{{uuid}}" in any string is
// replaced with one fresh UUID per scenario, so a filled value and a later
// assertion on it agree.
func Load(r io.Reader) ([]Scenario, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	var out []Scenario
	seen := make(map[string]bool)
	add := func(s Scenario) error {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.id] {
			return fmt.Errorf("duplicate scenario id %q", s.id)
		}
		seen[s.id] = true
		out = append(out, s)
		return nil
	}

	for i, doc := range file.Scenarios {
		s, err := doc.build()
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", i, doc.ID, err)
		}
		if err := add(s); err != nil {
			return nil, err
		}
	}
	for i, doc := range file.Sweeps {
		if len(doc.Targets) == 0 {
			return nil, fmt.Errorf("sweep %d (%s) has no targets", i, doc.ID)
		}
		settle, err := parseDuration(doc.Settle)
		if err != nil {
			return nil, fmt.Errorf("sweep %d (%s): %w", i, doc.ID, err)
		}
		for _, s := range Sweep(SweepOptions{
			Prefix:     doc.ID,
			Start:      doc.Start,
			Role:       doc.Role,
			Targets:    doc.Targets,
			Settle:     settle,
			Screenshot: doc.Screenshot,
		}) {
			if err := add(s); err != nil {
				return nil, err
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("scenario file defines no scenarios")
	}
	return out, nil
}

func (d ScenarioDoc) build() (Scenario, error) {
	x := strings.NewReplacer("{{uuid}}", uuid.NewString()).Replace
	list := make([]steps.Step, 0, len(d.Steps))
	for i, sd := range d.Steps {
		st, err := sd.build(x)
		if err != nil {
			return Scenario{}, fmt.Errorf("step %d: %w", i, err)
		}
		list = append(list, st)
	}
	opts := []Option{WithScreenshot(d.Screenshot)}
	if d.Name != "" {
		opts = append(opts, WithName(d.Name))
	}
	if d.Expect != nil {
		st, err := d.Expect.build(x)
		if err != nil {
			return Scenario{}, fmt.Errorf("expect: %w", err)
		}
		switch st.(type) {
		case steps.AssertVisible, steps.AssertNotVisible, steps.Wait:
		default:
			return Scenario{}, fmt.Errorf("expect must be an assertion, got %s", st.Kind())
		}
		opts = append(opts, WithTerminal(st))
	}
	return New(d.ID, list, opts...), nil
}

func (d StepDoc) build(x func(string) string) (steps.Step, error) {
	var found []steps.Step
	if d.Navigate != "" {
		found = append(found, steps.Navigate{URL: x(d.Navigate)})
	}
	if d.Click != nil {
		if d.Click.Role == "" {
			return nil, fmt.Errorf("click requires a role")
		}
		found = append(found, steps.ClickByRole{Role: d.Click.Role, Name: x(d.Click.Name)})
	}
	if d.Fill != nil {
		found = append(found, steps.FillByLabel{Label: x(d.Fill.Label), Value: x(d.Fill.Value)})
	}
	if d.AssertVisible != nil {
		loc, timeout, err := d.AssertVisible.build(x)
		if err != nil {
			return nil, err
		}
		found = append(found, steps.AssertVisible{Locator: loc, Timeout: timeout})
	}
	if d.AssertNotVisible != nil {
		loc, timeout, err := d.AssertNotVisible.build(x)
		if err != nil {
			return nil, err
		}
		found = append(found, steps.AssertNotVisible{Locator: loc, Timeout: timeout})
	}
	if d.Wait != nil {
		st, err := d.Wait.build(x)
		if err != nil {
			return nil, err
		}
		found = append(found, st)
	}
	if d.Screenshot != "" {
		found = append(found, steps.Screenshot{Path: x(d.Screenshot)})
	}
	if d.Pause != "" {
		dur, err := parseDuration(d.Pause)
		if err != nil {
			return nil, err
		}
		found = append(found, steps.Pause{Duration: dur})
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("each step needs exactly one action, found %d", len(found))
	}
	return found[0], nil
}

func (d LocatorDoc) build(x func(string) string) (browser.LocatorSpec, time.Duration, error) {
	var specs []browser.LocatorSpec
	if d.Role != "" {
		specs = append(specs, browser.Role(d.Role, x(d.Name)))
	}
	if d.Label != "" {
		specs = append(specs, browser.Label(x(d.Label)))
	}
	if d.CSS != "" {
		specs = append(specs, browser.CSS(x(d.CSS)))
	}
	if d.TestID != "" {
		specs = append(specs, browser.TestID(x(d.TestID)))
	}
	if d.Text != "" {
		specs = append(specs, browser.Text(x(d.Text)))
	}
	if len(specs) != 1 {
		return browser.LocatorSpec{}, 0, fmt.Errorf("locator needs exactly one of role, label, css, testid or text")
	}
	loc := specs[0]
	loc.Exact = d.Exact
	loc.AtLeast = d.AtLeast
	timeout, err := parseDuration(d.Timeout)
	if err != nil {
		return browser.LocatorSpec{}, 0, err
	}
	return loc, timeout, nil
}

func (d WaitDoc) build(x func(string) string) (steps.Step, error) {
	loc, timeout, err := d.LocatorDoc.build(x)
	if err != nil {
		return nil, err
	}
	spec := wait.Spec{Kind: wait.Kind(d.Condition), Locator: loc}
	if spec.Kind == "" {
		spec.Kind = wait.KindVisible
	}
	switch {
	case d.Equals != nil:
		spec.Count = wait.Exactly(*d.Equals)
	case d.Min != nil:
		spec.Count = wait.AtLeast(*d.Min)
	case d.Max != nil:
		spec.Count = wait.AtMost(*d.Max)
	default:
		spec.Count = wait.AtLeast(1)
	}
	return steps.Wait{Condition: spec, Timeout: timeout}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
