package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gotrs-io/ui-smoke/internal/browser"
	"github.com/gotrs-io/ui-smoke/internal/steps"
	"github.com/gotrs-io/ui-smoke/internal/suite"
)

// EnvPrefix prefixes every environment override, e.g. UISMOKE_TARGET_BASE_URL.
const EnvPrefix = "UISMOKE"

// Config represents the harness configuration
type Config struct {
	Target    TargetConfig    `mapstructure:"target"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Timeouts  TimeoutConfig   `mapstructure:"timeouts"`
	Suite     SuiteConfig     `mapstructure:"suite"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	History   HistoryConfig   `mapstructure:"history"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type TargetConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Autodetect   bool          `mapstructure:"autodetect"`
	WaitReady    bool          `mapstructure:"wait_ready"`
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
}

type BrowserConfig struct {
	Engine   string         `mapstructure:"engine"`
	Headless bool           `mapstructure:"headless"`
	SlowMo   time.Duration  `mapstructure:"slow_mo"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Install  bool           `mapstructure:"install"`
	VideoDir string         `mapstructure:"video_dir"`
}

type ViewportConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type TimeoutConfig struct {
	Navigation   time.Duration `mapstructure:"navigation"`
	Ready        time.Duration `mapstructure:"ready"`
	Interaction  time.Duration `mapstructure:"interaction"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type SuiteConfig struct {
	Policy        string `mapstructure:"policy"`
	ResetBetween  bool   `mapstructure:"reset_between"`
	ScenariosFile string `mapstructure:"scenarios_file"`
}

type ArtifactsConfig struct {
	Dir         string `mapstructure:"dir"`
	Screenshots bool   `mapstructure:"screenshots"`
	FullPage    bool   `mapstructure:"full_page"`
	ReportJSON  string `mapstructure:"report_json"`
	ReportHTML  string `mapstructure:"report_html"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Verbose bool `mapstructure:"verbose"`
	NoColor bool `mapstructure:"no_color"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("target.base_url", "http://127.0.0.1:8080")
	v.SetDefault("target.autodetect", false)
	v.SetDefault("target.wait_ready", true)
	v.SetDefault("target.ready_timeout", 30*time.Second)

	v.SetDefault("browser.engine", "chromium")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", time.Duration(0))
	v.SetDefault("browser.viewport.width", 1280)
	v.SetDefault("browser.viewport.height", 720)
	v.SetDefault("browser.install", false)
	v.SetDefault("browser.video_dir", "")

	v.SetDefault("timeouts.navigation", 60*time.Second)
	v.SetDefault("timeouts.ready", 30*time.Second)
	v.SetDefault("timeouts.interaction", 5*time.Second)
	v.SetDefault("timeouts.poll_interval", 100*time.Millisecond)

	v.SetDefault("suite.policy", string(suite.FailFast))
	v.SetDefault("suite.reset_between", false)
	v.SetDefault("suite.scenarios_file", "")

	v.SetDefault("artifacts.dir", "verification")
	v.SetDefault("artifacts.screenshots", true)
	v.SetDefault("artifacts.full_page", false)
	v.SetDefault("artifacts.report_json", "report.json")
	v.SetDefault("artifacts.report_html", "report.html")

	v.SetDefault("metrics.textfile", "")
	v.SetDefault("history.path", "")

	v.SetDefault("logging.verbose", false)
	v.SetDefault("logging.no_color", false)
}

// FlagBindings maps CLI flag names to configuration keys.
var FlagBindings = map[string]string{
	"base-url":      "target.base_url",
	"autodetect":    "target.autodetect",
	"wait-ready":    "target.wait_ready",
	"engine":        "browser.engine",
	"headless":      "browser.headless",
	"slow-mo":       "browser.slow_mo",
	"install":       "browser.install",
	"policy":        "suite.policy",
	"reset-between": "suite.reset_between",
	"scenarios":     "suite.scenarios_file",
	"artifacts":     "artifacts.dir",
	"metrics-file":  "metrics.textfile",
	"history":       "history.path",
	"verbose":       "logging.verbose",
	"no-color":      "logging.no_color",
}

// Load builds the configuration from defaults, an optional YAML file, a
// .env file, UISMOKE_* environment variables and any flags that were set,
// in increasing order of precedence.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagBindings {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Target.BaseURL = strings.TrimRight(cfg.Target.BaseURL, "/")
	return cfg, nil
}

// Policy returns the parsed continuation policy.
func (c *Config) Policy() (suite.Policy, error) {
	return suite.ParsePolicy(c.Suite.Policy)
}

// BrowserOptions converts the browser section for the launcher.
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Engine:         c.Browser.Engine,
		Headless:       c.Browser.Headless,
		SlowMo:         c.Browser.SlowMo,
		Width:          c.Browser.Viewport.Width,
		Height:         c.Browser.Viewport.Height,
		Install:        c.Browser.Install,
		VideoDir:       c.Browser.VideoDir,
		FullPage:       c.Artifacts.FullPage,
		DefaultTimeout: c.Timeouts.Ready,
	}
}

// StepTimeouts converts the timeouts section for the step executor.
func (c *Config) StepTimeouts() steps.Timeouts {
	return steps.Timeouts{
		Navigation:   c.Timeouts.Navigation,
		Interaction:  c.Timeouts.Interaction,
		PollInterval: c.Timeouts.PollInterval,
	}
}
