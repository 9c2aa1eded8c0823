package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/api/schemas"
	"github.com/xkilldash9x/stepshot/internal/config"
	"github.com/xkilldash9x/stepshot/internal/observability"
	"github.com/xkilldash9x/stepshot/internal/reporting"
	"github.com/xkilldash9x/stepshot/internal/scenario"
	"github.com/xkilldash9x/stepshot/internal/service"
)

// ErrStepsFailed is returned by the run command when at least one step failed
// or timed out. The report has still been written.
var ErrStepsFailed = errors.New("one or more steps failed")

func newRunCmd(opts *rootOptions) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the smoke suite against the target site and writes a report",
		Long: `Launches headless Chrome, runs the fixed smoke suite (open the homepage,
scroll down, scroll to top, read the title, bring the footer into view, final
screenshot), captures a screenshot after every step and writes a report with
each screenshot attached to its step. Exits non-zero if any step failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg == nil {
				return errors.New("configuration was not loaded")
			}
			return runSmoke(cmd.Context(), opts.cfg, opts.factory, cmd.OutOrStdout())
		},
	}

	runCmd.Flags().StringP("url", "u", "", "target URL (default https://theysaidso.com)")
	runCmd.Flags().StringP("output", "o", "", "report directory (default ./stepshot-report)")
	runCmd.Flags().StringP("format", "f", "", "report format: html, json or junit")
	runCmd.Flags().Duration("step-timeout", 0, "maximum duration of a single step (default 30s)")
	runCmd.Flags().Bool("headless", true, "run Chrome without a visible window")
	runCmd.Flags().String("exec-path", "", "path to the Chrome binary")
	return runCmd
}

// runSmoke owns the browser for the whole run: Start, then the suite, then
// the report, with Shutdown deferred so it runs on every exit path.
func runSmoke(ctx context.Context, cfg *config.Config, factory service.ComponentFactory, out io.Writer) error {
	components, err := factory.Create(cfg, observability.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	logger := components.Logger
	logger.Info("Starting smoke run.", zap.String("target", cfg.Run.TargetURL), zap.String("report_dir", cfg.Report.Dir))

	session, err := components.StartSession(ctx)
	if err != nil {
		return fmt.Errorf("could not start browser: %w", err)
	}
	defer func() {
		// The run context may already be cancelled; shutdown gets its own budget.
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Browser.StopTimeout+time.Second)
		defer cancel()
		components.Shutdown(stopCtx)
	}()

	meta := reporting.Meta{
		RunID:     components.RunID,
		Title:     cfg.Report.Title,
		TargetURL: cfg.Run.TargetURL,
		StartedAt: time.Now(),
	}
	results := components.Runner.Run(ctx, session, scenario.Smoke(cfg.Run))
	meta.FinishedAt = time.Now()

	reportPath, err := writeReport(components.Fs, cfg.Report, meta, results)
	if err != nil {
		return err
	}

	summary := reporting.Summarize(results)
	printResults(out, results, summary, reportPath)
	logger.Info("Smoke run finished.",
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Int("timed_out", summary.TimedOut),
		zap.Int("skipped", summary.Skipped),
		zap.String("report", reportPath),
	)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if !summary.OK() {
		return fmt.Errorf("%w: %d failed, %d timed out", ErrStepsFailed, summary.Failed, summary.TimedOut)
	}
	return nil
}

func writeReport(fs afero.Fs, cfg config.ReportConfig, meta reporting.Meta, results []schemas.StepResult) (string, error) {
	rep, err := reporting.New(fs, cfg.Format, cfg.Dir, meta)
	if err != nil {
		return "", fmt.Errorf("failed to create reporter: %w", err)
	}
	if err := rep.Write(results); err != nil {
		_ = rep.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := rep.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize report: %w", err)
	}
	return rep.Path(), nil
}

func printResults(out io.Writer, results []schemas.StepResult, summary reporting.Summary, reportPath string) {
	for _, r := range results {
		fmt.Fprintf(out, "[%-7s] %d. %s (%s)\n", r.Status, r.Index, r.Name, r.Duration.Round(time.Millisecond))
		if r.Error != "" {
			fmt.Fprintf(out, "          error: %s\n", r.Error)
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "          warning: %s\n", w)
		}
		if r.Context != "" {
			fmt.Fprintf(out, "          %s\n", r.Context)
		}
	}
	fmt.Fprintf(out, "\n%d/%d steps passed. Report: %s\n", summary.Passed, summary.Total, reportPath)
}
