// Package playwright implements core.Driver on top of playwright-go.
// It drives Chromium, Firefox and WebKit.
package playwright

import (
	"fmt"

	pw "github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
)

// Launcher starts the Playwright driver process and one browser.
type Launcher struct {
	DriverDir       string // Where the Playwright driver lives; empty uses the library default
	InstallBrowsers bool   // Download the driver and browser before launching
	Verbose         bool
}

// NewLauncher creates a launcher using driverDir for the Playwright driver.
func NewLauncher(driverDir string) *Launcher {
	return &Launcher{DriverDir: driverDir}
}

func (l *Launcher) runOptions(engine string) *pw.RunOptions {
	return &pw.RunOptions{
		DriverDirectory: l.DriverDir,
		Browsers:        []string{engine},
		Verbose:         l.Verbose,
		Stdout:          logger.GetWriter(),
		Stderr:          logger.GetWriter(),
	}
}

// Install downloads the Playwright driver and the browser for engine.
func (l *Launcher) Install(engine string) error {
	if !core.IsValidEngine(engine) {
		return fmt.Errorf("unsupported browser engine %q", engine)
	}
	logger.Info("installing playwright driver and %s into %s", engine, l.DriverDir)
	if err := pw.Install(l.runOptions(engine)); err != nil {
		return fmt.Errorf("failed to install playwright %s: %w", engine, err)
	}
	return nil
}

// Launch starts Playwright and launches the browser engine.
func (l *Launcher) Launch(opts core.LaunchOptions) (core.Browser, error) {
	if !core.IsValidEngine(opts.Engine) {
		return nil, fmt.Errorf("unsupported browser engine %q", opts.Engine)
	}
	if l.InstallBrowsers {
		if err := l.Install(opts.Engine); err != nil {
			return nil, err
		}
	}

	runner, err := pw.Run(l.runOptions(opts.Engine))
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browserType := engineType(runner, opts.Engine)
	browser, err := browserType.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(opts.Headless),
		SlowMo:   pw.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		if serr := runner.Stop(); serr != nil {
			logger.Warn("failed to stop playwright: %v", serr)
		}
		return nil, fmt.Errorf("failed to launch %s: %w", opts.Engine, err)
	}

	logger.Info("launched %s %s", opts.Engine, browser.Version())
	return &Browser{runner: runner, browser: browser, opts: opts}, nil
}

func engineType(runner *pw.Playwright, engine string) pw.BrowserType {
	switch engine {
	case core.EngineFirefox:
		return runner.Firefox
	case core.EngineWebKit:
		return runner.WebKit
	default:
		return runner.Chromium
	}
}

// Browser is a launched Playwright browser.
type Browser struct {
	runner  *pw.Playwright
	browser pw.Browser
	opts    core.LaunchOptions
}

// NewPage opens a browser context with the viewport and one page in it.
// The launch timeout becomes the context's default wait budget.
func (b *Browser) NewPage(viewport core.Viewport) (core.Driver, error) {
	ctx, err := b.browser.NewContext(pw.BrowserNewContextOptions{
		Viewport: &pw.Size{Width: viewport.Width, Height: viewport.Height},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	if b.opts.Timeout > 0 {
		ctx.SetDefaultTimeout(float64(b.opts.Timeout.Milliseconds()))
	}

	page, err := ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Driver{
		page: page,
		info: core.PlatformInfo{
			Driver:         "playwright",
			Engine:         b.opts.Engine,
			BrowserVersion: b.browser.Version(),
			Headless:       b.opts.Headless,
			Viewport:       viewport,
		},
	}, nil
}

// Close closes the browser and every context in it.
func (b *Browser) Close() error {
	if err := b.browser.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// Release stops the Playwright driver process.
func (b *Browser) Release() error {
	if err := b.runner.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}
