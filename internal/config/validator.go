package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

var engines = map[string]bool{"chromium": true, "firefox": true, "webkit": true}

// Validator collects every configuration problem before reporting.
type Validator struct {
	config *Config
	errors []string
}

func NewValidator(cfg *Config) *Validator {
	return &Validator{config: cfg, errors: []string{}}
}

func (v *Validator) Validate() error {
	v.validateTarget()
	v.validateBrowser()
	v.validateTimeouts()
	v.validateSuite()

	if len(v.errors) > 0 {
		return fmt.Errorf("config validation failed:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *Validator) validateTarget() {
	base := v.config.Target.BaseURL
	if base == "" {
		v.addError("target.base_url is not set")
		return
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v.addError(fmt.Sprintf("target.base_url %q is not an absolute http(s) URL", base))
	}
}

func (v *Validator) validateBrowser() {
	b := v.config.Browser
	if !engines[strings.ToLower(b.Engine)] {
		v.addError(fmt.Sprintf("browser.engine %q is not one of chromium, firefox, webkit", b.Engine))
	}
	if b.Viewport.Width <= 0 || b.Viewport.Height <= 0 {
		v.addError(fmt.Sprintf("browser.viewport must be positive, got %dx%d", b.Viewport.Width, b.Viewport.Height))
	}
	if b.SlowMo < 0 {
		v.addError("browser.slow_mo must not be negative")
	}
}

func (v *Validator) validateTimeouts() {
	t := v.config.Timeouts
	for _, d := range []struct {
		key   string
		value time.Duration
	}{
		{"timeouts.navigation", t.Navigation},
		{"timeouts.ready", t.Ready},
		{"timeouts.interaction", t.Interaction},
		{"timeouts.poll_interval", t.PollInterval},
		{"target.ready_timeout", v.config.Target.ReadyTimeout},
	} {
		if d.value <= 0 {
			v.addError(d.key + " must be positive")
		}
	}
}

func (v *Validator) validateSuite() {
	if _, err := v.config.Policy(); err != nil {
		v.addError(err.Error())
	}
}

func (v *Validator) addError(message string) {
	v.errors = append(v.errors, "   - "+message)
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	return NewValidator(c).Validate()
}
