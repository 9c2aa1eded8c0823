// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/internal/config"
	"github.com/xkilldash9x/stepshot/internal/observability"
	"github.com/xkilldash9x/stepshot/internal/service"
)

// rootOptions carries state shared by every subcommand of one root command.
type rootOptions struct {
	cfgFile string
	cfg     *config.Config
	factory service.ComponentFactory
}

// flagKeys maps command-line flags to the configuration keys they override.
var flagKeys = map[string]string{
	"url":          "run.target_url",
	"step-timeout": "run.step_timeout",
	"output":       "report.dir",
	"format":       "report.format",
	"headless":     "browser.headless",
	"exec-path":    "browser.exec_path",
	"log-level":    "logger.level",
}

// NewRootCommand creates a fresh root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{factory: service.NewComponentFactory(afero.NewOsFs())}

	rootCmd := &cobra.Command{
		Use:   "stepshot",
		Short: "Stepshot runs a scripted browser smoke test and captures a screenshot after every step.",
		// Version is dynamically set at build time. See cmd/version.go.
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// This function runs before any command, setting up config and logging.
			cfg, err := loadConfig(opts.cfgFile, cmd.Flags())
			if err != nil {
				// Initialize a fallback logger so the failure is still reported.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "stepshot"})
				return err
			}
			opts.cfg = cfg

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting stepshot", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default is ./stepshot.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd, opts
}

// loadConfig layers defaults, the config file, STEPSHOT_* environment
// variables and explicitly set flags, in increasing order of precedence.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("stepshot")
		v.SetConfigType("yaml")
	}
	config.BindEnvironment(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Execute runs the root command with ctx and logs any failure.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		observability.GetLogger().Error("Command execution failed", zap.Error(err))
	}
	observability.Sync()
	return err
}
