package core

import (
	"time"

	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// Driver is the automation engine boundary for one open page.
// Implementations: Playwright, Chrome DevTools, in-memory mock.
// Page objects are the only callers; scenarios never touch a Driver directly.
type Driver interface {
	// Navigate loads url in the page.
	Navigate(url string) error

	// Title returns the current document title.
	Title() (string, error)

	// URL returns the current page URL.
	URL() string

	// WaitForURL blocks until the page URL matches a glob pattern ("**/boards")
	// or the wait budget elapses.
	WaitForURL(pattern string) error

	// Find returns a lazy handle; nothing is resolved until an operation runs.
	Find(sel locator.Selector) Element

	// Screenshot captures the visible page as PNG.
	Screenshot() ([]byte, error)

	// GetPlatformInfo returns engine and page information.
	GetPlatformInfo() *PlatformInfo
}

// Element is a live handle to the elements matched by a selector.
// Every call re-resolves the selector against current UI state.
type Element interface {
	Selector() locator.Selector

	Click() error
	RightClick() error
	Fill(text string) error

	// InnerText returns the rendered text of the single matched element.
	InnerText() (string, error)
	// AllInnerTexts returns the rendered text of every match in document order.
	AllInnerTexts() ([]string, error)

	// IsVisible does not wait: false when nothing matches.
	IsVisible() (bool, error)
	// Count does not wait: 0 when nothing matches.
	Count() (int, error)

	// DragTo performs one drag gesture from this element onto target.
	DragTo(target Element) error
}

// Launcher starts an automation engine and one browser instance.
type Launcher interface {
	Launch(opts LaunchOptions) (Browser, error)
}

// Browser is a launched browser instance.
type Browser interface {
	// NewPage opens a browser context with the viewport and one page in it.
	NewPage(viewport Viewport) (Driver, error)

	// Close closes the browser instance.
	Close() error

	// Release frees the automation engine handle. Safe to call after a failed Close.
	Release() error
}

// LaunchOptions configures a browser launch.
type LaunchOptions struct {
	Engine   string        // chromium, firefox, webkit
	Headless bool          // Run without a visible window
	SlowMo   time.Duration // Delay inserted between engine operations
	Timeout  time.Duration // Default wait budget per gesture
}

// Viewport is the browser context size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PlatformInfo contains engine and page details
type PlatformInfo struct {
	Driver         string   `json:"driver"`         // playwright, cdp, mock
	Engine         string   `json:"engine"`         // chromium, firefox, webkit
	BrowserVersion string   `json:"browserVersion"` // e.g. "131.0.6778.33"
	Headless       bool     `json:"headless"`
	Viewport       Viewport `json:"viewport"`
}

// Engine names accepted by launchers.
const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
	EngineWebKit   = "webkit"
)

// Engines is the closed set of supported browser engines.
var Engines = []string{EngineChromium, EngineFirefox, EngineWebKit}

// IsValidEngine reports whether name is one of Engines.
func IsValidEngine(name string) bool {
	for _, e := range Engines {
		if e == name {
			return true
		}
	}
	return false
}
