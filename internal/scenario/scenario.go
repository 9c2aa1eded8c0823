// internal/scenario/scenario.go
package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stepshot/internal/config"
	"github.com/xkilldash9x/stepshot/internal/runner"
)

// Title names the default suite in reports.
const Title = "Multi-Step Smoke Test with Screenshots"

// Step names, in execution order.
const (
	StepOpenHomepage    = "Open homepage"
	StepScrollDown      = "Scroll down"
	StepScrollToTop     = "Scroll to top"
	StepGetTitle        = "Get title"
	StepHoverFooter     = "Hover over footer"
	StepFinalScreenshot = "Final screenshot"
)

// Smoke builds the default six-step suite against cfg.TargetURL.
func Smoke(cfg config.RunConfig) []runner.Step {
	return []runner.Step{
		{Name: StepOpenHomepage, Action: openHomepage(cfg.TargetURL)},
		{Name: StepScrollDown, Action: scrollBy(cfg.ScrollBy, cfg.ScrollDelay)},
		{Name: StepScrollToTop, Action: scrollToTop(cfg.ScrollDelay)},
		{Name: StepGetTitle, Action: logTitle},
		{Name: StepHoverFooter, Action: hoverFooter(cfg.FooterSelector, cfg.ScrollDelay)},
		// The screenshot is taken by the runner after every step.
		{Name: StepFinalScreenshot},
	}
}

func openHomepage(url string) runner.Action {
	return func(ctx context.Context, sc *runner.StepContext) error {
		return sc.Session.Navigate(ctx, url)
	}
}

func scrollBy(pixels int, delay time.Duration) runner.Action {
	return func(ctx context.Context, sc *runner.StepContext) error {
		if err := sc.Session.Evaluate(ctx, fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil); err != nil {
			return fmt.Errorf("failed to scroll down: %w", err)
		}
		return sleep(ctx, delay)
	}
}

func scrollToTop(delay time.Duration) runner.Action {
	return func(ctx context.Context, sc *runner.StepContext) error {
		if err := sc.Session.Evaluate(ctx, "window.scrollTo(0, 0)", nil); err != nil {
			return fmt.Errorf("failed to scroll to top: %w", err)
		}
		return sleep(ctx, delay)
	}
}

func logTitle(ctx context.Context, sc *runner.StepContext) error {
	title, err := sc.Session.Title(ctx)
	if err != nil {
		return fmt.Errorf("failed to read page title: %w", err)
	}
	sc.Logger.Info("Page Title", zap.String("title", title))
	return nil
}

// hoverFooter scrolls the footer into view. A page without one still passes;
// the absence is recorded as a warning.
func hoverFooter(selector string, delay time.Duration) runner.Action {
	return func(ctx context.Context, sc *runner.StepContext) error {
		footer, found, err := sc.Session.FindOptional(ctx, selector)
		if err != nil {
			return fmt.Errorf("failed to look up %q: %w", selector, err)
		}
		if !found {
			sc.Logger.Info("Footer not found.", zap.String("selector", selector))
			sc.Warn(fmt.Sprintf("Footer not found (selector %q).", selector))
			return nil
		}
		if err := sc.Session.ScrollIntoView(ctx, footer); err != nil {
			return fmt.Errorf("failed to scroll footer into view: %w", err)
		}
		return sleep(ctx, delay)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
