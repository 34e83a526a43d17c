// Package cdp implements core.Driver over the Chrome DevTools Protocol using
// chromedp. It drives a local Chromium only; selectors are resolved by a
// script evaluated in the page and gestures are dispatched as raw input events.
package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
)

// DefaultTimeout is the wait budget when the launch options leave it unset.
const DefaultTimeout = 30 * time.Second

// Launcher starts a local Chromium through chromedp's exec allocator.
type Launcher struct {
	ExecPath string // Chrome binary; empty searches the usual locations
}

// NewLauncher creates a launcher for the Chrome binary at execPath.
func NewLauncher(execPath string) *Launcher {
	return &Launcher{ExecPath: execPath}
}

func (l *Launcher) allocatorOptions(opts core.LaunchOptions) []chromedp.ExecAllocatorOption {
	options := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	if l.ExecPath != "" {
		options = append(options, chromedp.ExecPath(l.ExecPath))
	}
	return options
}

// Launch starts Chromium. Other engines are rejected.
func (l *Launcher) Launch(opts core.LaunchOptions) (core.Browser, error) {
	if opts.Engine != core.EngineChromium {
		return nil, fmt.Errorf("cdp driver supports %s only, got %q", core.EngineChromium, opts.Engine)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	var product string
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, p, _, _, _, err := browser.GetVersion().Do(ctx)
		product = p
		return err
	}))
	if err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	logger.Info("launched %s via cdp", product)
	return &Browser{
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		product:     product,
		opts:        opts,
	}, nil
}

// Browser is a Chromium instance owned by chromedp.
type Browser struct {
	allocCancel context.CancelFunc
	browserCtx  context.Context
	product     string
	opts        core.LaunchOptions
}

// NewPage opens a new tab sized to viewport.
func (b *Browser) NewPage(viewport core.Viewport) (core.Driver, error) {
	// The tab lives until the browser context is cancelled in Close.
	tabCtx, closeTab := chromedp.NewContext(b.browserCtx)
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(int64(viewport.Width), int64(viewport.Height), 1, false).Do(ctx)
	}))
	if err != nil {
		closeTab()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Driver{
		ctx:     tabCtx,
		timeout: b.opts.Timeout,
		slowMo:  b.opts.SlowMo,
		info: core.PlatformInfo{
			Driver:         "cdp",
			Engine:         core.EngineChromium,
			BrowserVersion: b.product,
			Headless:       b.opts.Headless,
			Viewport:       viewport,
		},
	}, nil
}

// Close shuts the browser down gracefully.
func (b *Browser) Close() error {
	if err := chromedp.Cancel(b.browserCtx); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// Release stops the allocator, killing the browser process if still running.
func (b *Browser) Release() error {
	b.allocCancel()
	return nil
}
