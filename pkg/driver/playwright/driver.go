package playwright

import (
	"errors"
	"fmt"

	pw "github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// Driver implements core.Driver for one Playwright page.
type Driver struct {
	page pw.Page
	info core.PlatformInfo
}

// Navigate loads url and waits for the load event.
func (d *Driver) Navigate(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Title returns the document title.
func (d *Driver) Title() (string, error) {
	return d.page.Title()
}

// URL returns the current page URL.
func (d *Driver) URL() string {
	return d.page.URL()
}

// WaitForURL waits for the URL to match a glob such as "**/boards".
func (d *Driver) WaitForURL(pattern string) error {
	if err := d.page.WaitForURL(pattern); err != nil {
		if errors.Is(err, pw.ErrTimeout) {
			return core.ErrWaitTimeout.WithMessage(fmt.Sprintf("url %q does not match %q", d.page.URL(), pattern)).WithCause(err)
		}
		return fmt.Errorf("wait for url %q: %w", pattern, err)
	}
	return nil
}

// Find returns a lazy locator for sel.
func (d *Driver) Find(sel locator.Selector) core.Element {
	if bad := core.CheckSelector(sel); bad != nil {
		return bad
	}
	return &element{sel: sel, loc: compile(pageFinder{page: d.page}, sel)}
}

// Screenshot captures the viewport as PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	return d.page.Screenshot()
}

// GetPlatformInfo returns engine and page information.
func (d *Driver) GetPlatformInfo() *core.PlatformInfo {
	info := d.info
	return &info
}

type element struct {
	sel locator.Selector
	loc pw.Locator
}

func (e *element) Selector() locator.Selector { return e.sel }

func (e *element) Click() error {
	return mapError(e.sel, e.loc.Click())
}

func (e *element) RightClick() error {
	return mapError(e.sel, e.loc.Click(pw.LocatorClickOptions{Button: pw.MouseButtonRight}))
}

func (e *element) Fill(text string) error {
	return mapError(e.sel, e.loc.Fill(text))
}

func (e *element) InnerText() (string, error) {
	text, err := e.loc.InnerText()
	return text, mapError(e.sel, err)
}

func (e *element) AllInnerTexts() ([]string, error) {
	texts, err := e.loc.AllInnerTexts()
	return texts, mapError(e.sel, err)
}

func (e *element) IsVisible() (bool, error) {
	visible, err := e.loc.IsVisible()
	return visible, mapError(e.sel, err)
}

func (e *element) Count() (int, error) {
	n, err := e.loc.Count()
	return n, mapError(e.sel, err)
}

func (e *element) DragTo(target core.Element) error {
	if bad, ok := target.(*core.InvalidElement); ok {
		return bad.Reason()
	}
	t, ok := target.(*element)
	if !ok {
		return fmt.Errorf("drag target %s does not belong to the playwright driver", target.Selector().String())
	}
	return mapError(e.sel, e.loc.DragTo(t.loc))
}
