package config

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/suite"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.Target.BaseURL)
	assert.True(t, cfg.Target.WaitReady)
	assert.Equal(t, "chromium", cfg.Browser.Engine)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 1280, cfg.Browser.Viewport.Width)
	assert.Equal(t, 720, cfg.Browser.Viewport.Height)
	assert.Equal(t, 60*time.Second, cfg.Timeouts.Navigation)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Interaction)
	assert.Equal(t, 100*time.Millisecond, cfg.Timeouts.PollInterval)
	assert.Equal(t, "verification", cfg.Artifacts.Dir)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, suite.FailFast, policy)
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "smoke.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
target:
  base_url: http://staging.local:9000/
browser:
  engine: firefox
  viewport:
    width: 1920
suite:
  policy: collect-all
timeouts:
  interaction: 2s
`), 0o644))

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(file, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://staging.local:9000", cfg.Target.BaseURL, "trailing slash trimmed")
		assert.Equal(t, "firefox", cfg.Browser.Engine)
		assert.Equal(t, 1920, cfg.Browser.Viewport.Width)
		assert.Equal(t, 720, cfg.Browser.Viewport.Height)
		assert.Equal(t, 2*time.Second, cfg.Timeouts.Interaction)
		assert.Equal(t, "collect-all", cfg.Suite.Policy)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("UISMOKE_BROWSER_ENGINE", "webkit")
		t.Setenv("UISMOKE_TIMEOUTS_INTERACTION", "750ms")
		cfg, err := Load(file, nil)
		require.NoError(t, err)
		assert.Equal(t, "webkit", cfg.Browser.Engine)
		assert.Equal(t, 750*time.Millisecond, cfg.Timeouts.Interaction)
	})

	t.Run("changed flags override environment", func(t *testing.T) {
		t.Setenv("UISMOKE_SUITE_POLICY", "fail-fast")
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("policy", "", "")
		flags.String("base-url", "", "")
		flags.Bool("headless", true, "")
		require.NoError(t, flags.Parse([]string{"--policy=collect-all", "--headless=false"}))

		cfg, err := Load(file, flags)
		require.NoError(t, err)
		assert.Equal(t, "collect-all", cfg.Suite.Policy)
		assert.False(t, cfg.Browser.Headless)
		assert.Equal(t, "http://staging.local:9000", cfg.Target.BaseURL, "unchanged flag does not win")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "nope.yaml"), nil)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("", nil)
		require.NoError(t, err)
		return cfg
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"empty base url", func(c *Config) { c.Target.BaseURL = "" }, "target.base_url is not set"},
		{"relative base url", func(c *Config) { c.Target.BaseURL = "/app" }, "not an absolute http(s) URL"},
		{"unknown engine", func(c *Config) { c.Browser.Engine = "lynx" }, "browser.engine"},
		{"zero viewport", func(c *Config) { c.Browser.Viewport.Width = 0 }, "browser.viewport must be positive"},
		{"zero interaction timeout", func(c *Config) { c.Timeouts.Interaction = 0 }, "timeouts.interaction must be positive"},
		{"bad policy", func(c *Config) { c.Suite.Policy = "retry" }, "unknown continuation policy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}

	t.Run("collects every problem", func(t *testing.T) {
		cfg := valid()
		cfg.Browser.Engine = ""
		cfg.Timeouts.Navigation = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "browser.engine")
		assert.Contains(t, err.Error(), "timeouts.navigation")
	})
}

func TestConversions(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	cfg.Artifacts.FullPage = true

	opts := cfg.BrowserOptions()
	assert.Equal(t, "chromium", opts.Engine)
	assert.Equal(t, 1280, opts.Width)
	assert.True(t, opts.FullPage)
	assert.Equal(t, cfg.Timeouts.Ready, opts.DefaultTimeout)

	timeouts := cfg.StepTimeouts()
	assert.Equal(t, cfg.Timeouts.Navigation, timeouts.Navigation)
	assert.Equal(t, cfg.Timeouts.Interaction, timeouts.Interaction)
	assert.Equal(t, cfg.Timeouts.PollInterval, timeouts.PollInterval)
}

func TestDotEnv(t *testing.T) {
	t.Run("parses lines", func(t *testing.T) {
		testCases := []struct {
			line string
			key  string
			val  string
			ok   bool
		}{
			{"FOO=bar", "FOO", "bar", true},
			{"  FOO = bar  ", "FOO", "bar", true},
			{`FOO="quoted value"`, "FOO", "quoted value", true},
			{"FOO='single'", "FOO", "single", true},
			{"export FOO=bar", "FOO", "bar", true},
			{"# comment", "", "", false},
			{"", "", "", false},
			{"FOO=", "", "", false},
			{"=bar", "", "", false},
			{"no separator", "", "", false},
		}
		for _, tc := range testCases {
			key, val, ok := parseDotEnvLine(tc.line)
			assert.Equal(t, tc.ok, ok, tc.line)
			assert.Equal(t, tc.key, key, tc.line)
			assert.Equal(t, tc.val, val, tc.line)
		}
	})

	t.Run("does not override the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("UISMOKE_DOTENV_A=file\nUISMOKE_DOTENV_B=file\n"), 0o644))
		t.Setenv("UISMOKE_DOTENV_A", "env")
		t.Setenv("UISMOKE_DOTENV_B", "")
		os.Unsetenv("UISMOKE_DOTENV_B")

		loadDotEnv(path)
		assert.Equal(t, "env", os.Getenv("UISMOKE_DOTENV_A"))
		assert.Equal(t, "file", os.Getenv("UISMOKE_DOTENV_B"))
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NotPanics(t, func() { loadDotEnv(filepath.Join(t.TempDir(), "absent")) })
	})
}

func TestTargetProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	t.Run("reachable", func(t *testing.T) {
		assert.True(t, Reachable(ctx, srv.URL), "any HTTP status counts")
		assert.False(t, Reachable(ctx, closedURL))
		assert.False(t, Reachable(ctx, "not a url"))
	})

	t.Run("resolve keeps a reachable url", func(t *testing.T) {
		assert.Equal(t, srv.URL, ResolveBaseURL(ctx, srv.URL, logger))
	})

	t.Run("candidates skip the initial url", func(t *testing.T) {
		list := candidates("http://127.0.0.1:8080")
		assert.NotContains(t, list, "http://127.0.0.1:8080")
		assert.Contains(t, list, "http://localhost:8080")
		assert.Contains(t, list, "http://127.0.0.1:4173")
		seen := map[string]bool{}
		for _, c := range list {
			assert.False(t, seen[c], "duplicate %s", c)
			seen[c] = true
		}
	})

	t.Run("wait succeeds once the target answers", func(t *testing.T) {
		require.NoError(t, WaitForTarget(ctx, srv.URL, time.Second, 10*time.Millisecond))
	})

	t.Run("wait times out with an environment error", func(t *testing.T) {
		start := time.Now()
		err := WaitForTarget(ctx, closedURL, 200*time.Millisecond, 20*time.Millisecond)
		require.Error(t, err)
		assert.True(t, errors.Is(err, browser.ErrEnvironment))
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}
