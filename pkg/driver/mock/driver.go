// Package mock provides an in-memory kanban application and driver for
// testing page objects and scenarios without a browser.
package mock

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// Driver is a mock implementation of core.Driver backed by an App.
type Driver struct {
	App *App

	mu       sync.Mutex
	viewport core.Viewport
	engine   string
	headless bool
	actions  []string
}

// New creates a driver for the application.
func New(app *App) *Driver {
	return &Driver{
		App:      app,
		engine:   core.EngineChromium,
		headless: true,
		viewport: core.Viewport{Width: 1920, Height: 1080},
	}
}

// Actions returns the gestures performed so far, e.g. `click testid="AddIcon"`.
func (d *Driver) Actions() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.actions...)
}

func (d *Driver) record(kind string, sel locator.Selector) {
	d.actions = append(d.actions, kind+" "+sel.String())
}

// Navigate loads url.
func (d *Driver) Navigate(url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.App.navigate(url)
}

// Title returns the current document title.
func (d *Driver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.App.title, nil
}

// URL returns the current page URL.
func (d *Driver) URL() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.App.url
}

// WaitForURL checks the current URL once; the simulated app never changes asynchronously.
func (d *Driver) WaitForURL(pattern string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if globMatch(pattern, d.App.url) {
		return nil
	}
	return core.ErrWaitTimeout.WithMessage(fmt.Sprintf("url %q does not match %q", d.App.url, pattern))
}

// Find returns a lazy element handle.
func (d *Driver) Find(sel locator.Selector) core.Element {
	if bad := core.CheckSelector(sel); bad != nil {
		return bad
	}
	return &element{d: d, sel: sel}
}

// Screenshot returns a 1x1 PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// GetPlatformInfo returns mock platform info.
func (d *Driver) GetPlatformInfo() *core.PlatformInfo {
	return &core.PlatformInfo{
		Driver:         "mock",
		Engine:         d.engine,
		BrowserVersion: "mock",
		Headless:       d.headless,
		Viewport:       d.viewport,
	}
}

// one resolves sel to exactly one node. Caller holds d.mu.
func (d *Driver) one(sel locator.Selector) (*Node, error) {
	nodes := resolve(d.App.render(), sel)
	switch len(nodes) {
	case 0:
		return nil, core.ErrElementNotFound.WithMessage("element not found: " + sel.String())
	case 1:
		return nodes[0], nil
	default:
		return nil, core.ErrAmbiguousMatch.WithMessage(
			fmt.Sprintf("%s resolved to %d elements", sel.String(), len(nodes)))
	}
}

type element struct {
	d   *Driver
	sel locator.Selector
}

func (e *element) Selector() locator.Selector { return e.sel }

func (e *element) Click() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	n, err := e.d.one(e.sel)
	if err != nil {
		return err
	}
	e.d.record("click", e.sel)
	if n.onClick != nil {
		n.onClick()
	}
	return nil
}

func (e *element) RightClick() error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	n, err := e.d.one(e.sel)
	if err != nil {
		return err
	}
	e.d.record("rightclick", e.sel)
	if n.onRightClick != nil {
		n.onRightClick()
	}
	return nil
}

func (e *element) Fill(text string) error {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	n, err := e.d.one(e.sel)
	if err != nil {
		return err
	}
	if !n.input || n.onFill == nil {
		return core.ErrNotInput.WithMessage(fmt.Sprintf("%s is a <%s>", e.sel.String(), n.Tag))
	}
	e.d.record("fill", e.sel)
	n.onFill(text)
	return nil
}

func (e *element) InnerText() (string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	n, err := e.d.one(e.sel)
	if err != nil {
		return "", err
	}
	return n.InnerText(), nil
}

func (e *element) AllInnerTexts() ([]string, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	nodes := resolve(e.d.App.render(), e.sel)
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = n.InnerText()
	}
	return texts, nil
}

func (e *element) IsVisible() (bool, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	nodes := resolve(e.d.App.render(), e.sel)
	switch len(nodes) {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, core.ErrAmbiguousMatch.WithMessage(
			fmt.Sprintf("%s resolved to %d elements", e.sel.String(), len(nodes)))
	}
}

func (e *element) Count() (int, error) {
	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	return len(resolve(e.d.App.render(), e.sel)), nil
}

func (e *element) DragTo(target core.Element) error {
	if bad, ok := target.(*core.InvalidElement); ok {
		return bad.Reason()
	}
	other, ok := target.(*element)
	if !ok || other.d != e.d {
		return fmt.Errorf("drag target %s belongs to another driver", target.Selector().String())
	}

	e.d.mu.Lock()
	defer e.d.mu.Unlock()
	src, err := e.d.one(e.sel)
	if err != nil {
		return err
	}
	dst, err := e.d.one(other.sel)
	if err != nil {
		return err
	}
	if src.card == nil {
		return fmt.Errorf("%s is not draggable", e.sel.String())
	}
	e.d.actions = append(e.d.actions, "drag "+e.sel.String()+" -> "+other.sel.String())
	if dst.dropList == nil {
		// Dropping outside a list leaves the board unchanged.
		return nil
	}
	e.d.App.move(src.card, dst.dropList, dst.dropOnto)
	return nil
}

// globMatch matches a URL against a Playwright-style glob:
// "**" matches any characters, "*" any characters except "/".
func globMatch(pattern, url string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == url || path.Clean(pattern) == path.Clean(url)
	}
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i++
		case pattern[i] == '*':
			b.WriteString("[^/]*")
		default:
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(url)
}
