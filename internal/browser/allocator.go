// internal/browser/allocator.go
package browser

import (
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/stepshot/internal/config"
)

// DefaultAllocatorOptions translates the browser config into chromedp exec
// allocator options. chromedp's own defaults are the base; they already
// include headless mode, which is flipped off when cfg.Headless is false.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	// Shared memory in containers is often too small for Chrome.
	opts = append(opts, chromedp.Flag("disable-dev-shm-usage", true))

	if !cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.DisableGPU {
		opts = append(opts, chromedp.DisableGPU)
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	for _, arg := range cfg.Args {
		opts = append(opts, argToFlag(arg))
	}
	return opts
}

// argToFlag converts "--name" or "--name=value" into a chromedp flag.
// chromedp adds the leading dashes itself.
func argToFlag(arg string) chromedp.ExecAllocatorOption {
	arg = strings.TrimLeft(arg, "-")
	name, value, hasValue := strings.Cut(arg, "=")
	if !hasValue {
		return chromedp.Flag(name, true)
	}
	return chromedp.Flag(name, value)
}
