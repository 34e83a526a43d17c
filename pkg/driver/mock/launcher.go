package mock

import (
	"errors"
	"fmt"

	"github.com/devicelab-dev/board-runner/pkg/core"
)

// Launcher is a core.Launcher that serves an App instead of a browser.
// The Fail* fields inject errors for lifecycle tests.
type Launcher struct {
	App *App

	FailLaunch  error
	FailNewPage error
	FailClose   error
	FailRelease error

	// Browser is the last launched browser.
	Browser *Browser
}

// NewLauncher creates a launcher for app.
func NewLauncher(app *App) *Launcher {
	return &Launcher{App: app}
}

// Launch starts a simulated browser.
func (l *Launcher) Launch(opts core.LaunchOptions) (core.Browser, error) {
	if l.FailLaunch != nil {
		return nil, l.FailLaunch
	}
	if !core.IsValidEngine(opts.Engine) {
		return nil, fmt.Errorf("unsupported browser engine %q", opts.Engine)
	}
	l.Browser = &Browser{launcher: l, opts: opts}
	return l.Browser, nil
}

// Browser is a simulated browser instance.
type Browser struct {
	launcher *Launcher
	opts     core.LaunchOptions

	Pages    []*Driver
	Closed   bool
	Released bool
}

// NewPage opens a page on the launcher's App.
func (b *Browser) NewPage(viewport core.Viewport) (core.Driver, error) {
	if b.launcher.FailNewPage != nil {
		return nil, b.launcher.FailNewPage
	}
	if b.Closed {
		return nil, errors.New("browser has been closed")
	}
	d := New(b.launcher.App)
	d.engine = b.opts.Engine
	d.headless = b.opts.Headless
	d.viewport = viewport
	b.Pages = append(b.Pages, d)
	return d, nil
}

// Close closes the browser.
func (b *Browser) Close() error {
	b.Closed = true
	return b.launcher.FailClose
}

// Release frees the engine handle.
func (b *Browser) Release() error {
	b.Released = true
	return b.launcher.FailRelease
}
