// File: internal/config/config_test.go
package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "stepshot", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.Equal(t, 1920, cfg.Browser.WindowWidth)
	assert.Equal(t, 1080, cfg.Browser.WindowHeight)
	assert.Equal(t, 20*time.Second, cfg.Browser.StartupTimeout)
	assert.Equal(t, 30*time.Second, cfg.Run.StepTimeout)
	assert.Equal(t, time.Second, cfg.Run.ScrollDelay)
	assert.Equal(t, 1000, cfg.Run.ScrollBy)
	assert.Equal(t, "footer", cfg.Run.FooterSelector)
	assert.Equal(t, "https://theysaidso.com", cfg.Run.TargetURL)
	assert.Equal(t, "screenshots", cfg.Report.ScreenshotDir)
	assert.Equal(t, "html", cfg.Report.Format)

	require.NoError(t, cfg.Validate(), "defaults must always validate")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Browser Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Browser.WindowWidth = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "window_width and window_height must be positive integers")

		cfg = NewDefaultConfig()
		cfg.Browser.StartupTimeout = 0
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "startup_timeout must be a positive duration")

		for _, d := range []time.Duration{0, -30 * time.Second} {
			cfg = NewDefaultConfig()
			cfg.Browser.StopTimeout = d
			err = cfg.Validate()
			require.Error(t, err, "stop_timeout %s", d)
			assert.Contains(t, err.Error(), "stop_timeout must be a positive duration")
		}
	})

	t.Run("Run Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Run.TargetURL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target_url is required")

		cfg = NewDefaultConfig()
		cfg.Run.TargetURL = "theysaidso.com"
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must start with http:// or https://")

		cfg = NewDefaultConfig()
		cfg.Run.StepTimeout = -time.Second
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step_timeout must be a positive duration")

		cfg = NewDefaultConfig()
		cfg.Run.ScrollDelay = -time.Second
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scroll_delay must not be negative")
	})

	t.Run("Report Validation", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Report.Format = "pdf"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unsupported format "pdf"`)

		cfg = NewDefaultConfig()
		cfg.Report.ScreenshotDir = "/abs/shots"
		err = cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "screenshot_dir must be a path relative to dir")
	})
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
browser:
  window_width: 1280
  startup_timeout: 5s
run:
  target_url: "http://127.0.0.1:8080"
report:
  format: JUnit
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, 1280, cfg.Browser.WindowWidth)
		assert.Equal(t, 1080, cfg.Browser.WindowHeight, "unset keys keep their defaults")
		assert.Equal(t, 5*time.Second, cfg.Browser.StartupTimeout)
		assert.Equal(t, "http://127.0.0.1:8080", cfg.Run.TargetURL)
		assert.Equal(t, "junit", cfg.Report.Format, "format is normalized to lower case")
	})

	t.Run("Non-positive Stop Timeout", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("browser.stop_timeout", "-30s")

		cfg, err := NewConfigFromViper(v)
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "stop_timeout must be a positive duration")
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("run.step_timeout", "0s")

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "step_timeout must be a positive duration")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		BindEnvironment(v)

		yamlConfig := []byte(`
run:
  target_url: "https://configfile.example"
`)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

		t.Setenv("STEPSHOT_RUN_TARGET_URL", "https://env.example")
		t.Setenv("STEPSHOT_RUN_STEP_TIMEOUT", "45s")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example", cfg.Run.TargetURL, "env must override the config file")
		assert.Equal(t, 45*time.Second, cfg.Run.StepTimeout)
	})

	t.Run("Home Directory Expansion", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		homedir.Reset()
		t.Cleanup(homedir.Reset)

		v := viper.New()
		SetDefaults(v)
		v.Set("report.dir", "~/reports/latest/")

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "reports", "latest"), cfg.Report.Dir)
	})
}
