// Package pages maps the kanban UI to page objects.
//
// Page objects are the only code that talks to a core.Driver. Each one keeps
// its locators private and exposes single gestures plus composed operations
// named after user intentions. Reads always re-resolve against the live page.
package pages

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// BasePage holds the driver shared by every page object.
type BasePage struct {
	driver core.Driver
}

// NewBasePage wraps a driver.
func NewBasePage(driver core.Driver) *BasePage {
	return &BasePage{driver: driver}
}

// Goto navigates to url.
func (p *BasePage) Goto(url string) error {
	if strings.TrimSpace(url) == "" {
		return core.ErrMissingRequired.WithMessage("url cannot be empty")
	}
	if err := p.driver.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Title returns the title of the current page.
func (p *BasePage) Title() (string, error) {
	return p.driver.Title()
}

// URL returns the current page URL.
func (p *BasePage) URL() string {
	return p.driver.URL()
}

// WaitForURL blocks until the URL matches a glob such as "**/boards".
func (p *BasePage) WaitForURL(pattern string) error {
	if err := p.driver.WaitForURL(pattern); err != nil {
		return fmt.Errorf("wait for url %s: %w", pattern, err)
	}
	return nil
}

// Screenshot captures the page, used for failure attachments.
func (p *BasePage) Screenshot() ([]byte, error) {
	return p.driver.Screenshot()
}

func (p *BasePage) find(sel locator.Selector) core.Element {
	return p.driver.Find(sel)
}

func (p *BasePage) click(what string, sel locator.Selector) error {
	if err := p.find(sel).Click(); err != nil {
		return fmt.Errorf("click %s: %w", what, err)
	}
	return nil
}

func (p *BasePage) fill(what string, sel locator.Selector, text string) error {
	if err := p.find(sel).Fill(text); err != nil {
		return fmt.Errorf("fill %s: %w", what, err)
	}
	return nil
}

func (p *BasePage) innerText(what string, sel locator.Selector) (string, error) {
	text, err := p.find(sel).InnerText()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", what, err)
	}
	return text, nil
}

// run executes steps in order and stops at the first failure.
func (p *BasePage) run(op string, steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
