// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Run     RunConfig     `mapstructure:"run" yaml:"run"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names used for each log level on the console.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the single headless browser instance.
type BrowserConfig struct {
	Headless   bool `mapstructure:"headless" yaml:"headless"`
	NoSandbox  bool `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	DisableGPU bool `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	// ExecPath overrides chromedp's lookup of the Chrome binary.
	ExecPath       string        `mapstructure:"exec_path" yaml:"exec_path"`
	WindowWidth    int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight   int           `mapstructure:"window_height" yaml:"window_height"`
	StartupTimeout time.Duration `mapstructure:"startup_timeout" yaml:"startup_timeout"`
	StopTimeout    time.Duration `mapstructure:"stop_timeout" yaml:"stop_timeout"`
	Args           []string      `mapstructure:"args" yaml:"args"`
	// Debug forwards chromedp's protocol logs to the logger.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// RunConfig controls the step sequence.
type RunConfig struct {
	TargetURL      string        `mapstructure:"target_url" yaml:"target_url"`
	StepTimeout    time.Duration `mapstructure:"step_timeout" yaml:"step_timeout"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout" yaml:"capture_timeout"`
	ScrollDelay    time.Duration `mapstructure:"scroll_delay" yaml:"scroll_delay"`
	ScrollBy       int           `mapstructure:"scroll_by" yaml:"scroll_by"`
	FooterSelector string        `mapstructure:"footer_selector" yaml:"footer_selector"`
}

// ReportConfig controls where and how results are rendered.
type ReportConfig struct {
	Dir           string `mapstructure:"dir" yaml:"dir"`
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	Format        string `mapstructure:"format" yaml:"format"`
	Title         string `mapstructure:"title" yaml:"title"`
}

// SupportedReportFormats lists the values accepted by report.format.
var SupportedReportFormats = []string{"html", "json", "junit"}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "stepshot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.startup_timeout", "20s")
	v.SetDefault("browser.stop_timeout", "10s")
	v.SetDefault("browser.debug", false)

	// -- Run --
	v.SetDefault("run.target_url", "https://theysaidso.com")
	v.SetDefault("run.step_timeout", "30s")
	v.SetDefault("run.capture_timeout", "10s")
	v.SetDefault("run.scroll_delay", "1s")
	v.SetDefault("run.scroll_by", 1000)
	v.SetDefault("run.footer_selector", "footer")

	// -- Report --
	v.SetDefault("report.dir", "stepshot-report")
	v.SetDefault("report.screenshot_dir", "screenshots")
	v.SetDefault("report.format", "html")
	v.SetDefault("report.title", "Multi-Step Smoke Test with Screenshots")
}

// EnvPrefix is prepended to every environment override, e.g. STEPSHOT_RUN_TARGET_URL.
const EnvPrefix = "STEPSHOT"

// BindEnvironment lets environment variables override any key that has a default.
func BindEnvironment(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// NewConfigFromViper creates a validated configuration from a viper instance.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Normalize expands user-relative paths and canonicalizes enum-like values.
func (c *Config) Normalize() error {
	dir, err := homedir.Expand(c.Report.Dir)
	if err != nil {
		return fmt.Errorf("failed to expand report.dir %q: %w", c.Report.Dir, err)
	}
	if dir != "" {
		dir = filepath.Clean(dir)
	}
	c.Report.Dir = dir
	c.Report.Format = strings.ToLower(strings.TrimSpace(c.Report.Format))

	if c.Logger.LogFile != "" {
		logFile, err := homedir.Expand(c.Logger.LogFile)
		if err != nil {
			return fmt.Errorf("failed to expand logger.log_file %q: %w", c.Logger.LogFile, err)
		}
		c.Logger.LogFile = logFile
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.Run.Validate(); err != nil {
		return fmt.Errorf("run configuration invalid: %w", err)
	}
	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the browser settings.
func (b *BrowserConfig) Validate() error {
	if b.WindowWidth <= 0 || b.WindowHeight <= 0 {
		return fmt.Errorf("window_width and window_height must be positive integers")
	}
	if b.StartupTimeout <= 0 {
		return fmt.Errorf("startup_timeout must be a positive duration")
	}
	if b.StopTimeout <= 0 {
		return fmt.Errorf("stop_timeout must be a positive duration")
	}
	return nil
}

// Validate checks the run settings.
func (r *RunConfig) Validate() error {
	if r.TargetURL == "" {
		return fmt.Errorf("target_url is required")
	}
	if !strings.HasPrefix(r.TargetURL, "http://") && !strings.HasPrefix(r.TargetURL, "https://") {
		return fmt.Errorf("target_url must start with http:// or https://")
	}
	if r.StepTimeout <= 0 {
		return fmt.Errorf("step_timeout must be a positive duration")
	}
	if r.CaptureTimeout <= 0 {
		return fmt.Errorf("capture_timeout must be a positive duration")
	}
	if r.ScrollDelay < 0 {
		return fmt.Errorf("scroll_delay must not be negative")
	}
	return nil
}

// Validate checks the report settings.
func (r *ReportConfig) Validate() error {
	if r.Dir == "" {
		return fmt.Errorf("dir is required")
	}
	if r.ScreenshotDir == "" || filepath.IsAbs(r.ScreenshotDir) {
		return fmt.Errorf("screenshot_dir must be a path relative to dir")
	}
	for _, f := range SupportedReportFormats {
		if r.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (expected one of %s)", r.Format, strings.Join(SupportedReportFormats, ", "))
}
