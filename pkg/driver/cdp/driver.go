package cdp

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

const (
	pollInterval = 100 * time.Millisecond
	dragSteps    = 12
)

// Driver implements core.Driver for one Chromium tab.
type Driver struct {
	ctx     context.Context
	timeout time.Duration
	slowMo  time.Duration
	info    core.PlatformInfo
}

// run executes actions within the wait budget.
func (d *Driver) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (d *Driver) pause() {
	if d.slowMo > 0 {
		time.Sleep(d.slowMo)
	}
}

// Navigate loads url and waits for the load event.
func (d *Driver) Navigate(url string) error {
	if err := d.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Title returns the document title.
func (d *Driver) Title() (string, error) {
	var title string
	err := d.run(chromedp.Title(&title))
	return title, err
}

// URL returns the current page URL, or "" if the tab is gone.
func (d *Driver) URL() string {
	var url string
	if err := d.run(chromedp.Location(&url)); err != nil {
		return ""
	}
	return url
}

// WaitForURL polls the location until it matches a glob such as "**/boards".
func (d *Driver) WaitForURL(pattern string) error {
	re := globPattern(pattern)
	deadline := time.Now().Add(d.timeout)
	for {
		current := d.URL()
		if re.MatchString(current) {
			return nil
		}
		if time.Now().After(deadline) {
			return core.ErrWaitTimeout.WithMessage(fmt.Sprintf("url %q does not match %q", current, pattern))
		}
		time.Sleep(pollInterval)
	}
}

// Find returns a lazy handle for sel.
func (d *Driver) Find(sel locator.Selector) core.Element {
	if bad := core.CheckSelector(sel); bad != nil {
		return bad
	}
	return &element{d: d, sel: sel}
}

// Screenshot captures the viewport as PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	var buf []byte
	if err := d.run(chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// GetPlatformInfo returns engine and page information.
func (d *Driver) GetPlatformInfo() *core.PlatformInfo {
	info := d.info
	return &info
}

// eval runs one resolver operation for sel.
func (d *Driver) eval(sel locator.Selector, op string) (*result, error) {
	expr, err := script(sel, op)
	if err != nil {
		return nil, err
	}
	var res result
	if err := d.run(chromedp.Evaluate(expr, &res)); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sel.String(), err)
	}
	return &res, nil
}

// waitOne polls until sel resolves to exactly one element for which ready
// holds. More than one match fails at once.
func (d *Driver) waitOne(sel locator.Selector, op string, ready func(*result) bool) (*result, error) {
	deadline := time.Now().Add(d.timeout)
	for {
		res, err := d.eval(sel, op)
		if err != nil {
			return nil, err
		}
		if res.Count > 1 {
			return nil, classify(sel, res.Count)
		}
		if res.Count == 1 && (ready == nil || ready(res)) {
			return res, nil
		}
		if time.Now().After(deadline) {
			if res.Count == 1 {
				return nil, core.ErrElementNotFound.WithMessage("element not visible: " + sel.String())
			}
			return nil, classify(sel, res.Count)
		}
		time.Sleep(pollInterval)
	}
}

func visible(r *result) bool { return r.Visible }

// mouse dispatches one mouse event at p.
func (d *Driver) mouse(typ input.MouseType, p point, button input.MouseButton, buttons int64) chromedp.Action {
	ev := input.DispatchMouseEvent(typ, p.X, p.Y).WithButton(button).WithButtons(buttons)
	if typ != input.MouseMoved {
		ev = ev.WithClickCount(1)
	}
	return ev
}

// center scrolls sel into view and returns its center point.
func (d *Driver) center(sel locator.Selector) (point, error) {
	res, err := d.waitOne(sel, opBox, visible)
	if err != nil {
		return point{}, err
	}
	if res.Box == nil {
		return point{}, core.ErrElementNotFound.WithMessage("element has no box: " + sel.String())
	}
	return *res.Box, nil
}

func (d *Driver) click(sel locator.Selector, button input.MouseButton, buttons int64) error {
	p, err := d.center(sel)
	if err != nil {
		return err
	}
	d.pause()
	return d.run(
		d.mouse(input.MouseMoved, p, input.None, 0),
		d.mouse(input.MousePressed, p, button, buttons),
		d.mouse(input.MouseReleased, p, button, 0),
	)
}

type element struct {
	d   *Driver
	sel locator.Selector
}

func (e *element) Selector() locator.Selector { return e.sel }

func (e *element) Click() error {
	return e.d.click(e.sel, input.Left, 1)
}

func (e *element) RightClick() error {
	return e.d.click(e.sel, input.Right, 2)
}

// Fill replaces the value of an input, textarea or editable element.
func (e *element) Fill(text string) error {
	res, err := e.d.waitOne(e.sel, opFocus, visible)
	if err != nil {
		return err
	}
	if !res.Input {
		return core.ErrNotInput.WithMessage("element is not editable: " + e.sel.String())
	}
	e.d.pause()
	if text == "" {
		return e.d.run(deleteKey(input.KeyDown), deleteKey(input.KeyUp))
	}
	return e.d.run(input.InsertText(text))
}

func deleteKey(typ input.KeyType) chromedp.Action {
	return input.DispatchKeyEvent(typ).WithKey("Delete").WithCode("Delete").WithWindowsVirtualKeyCode(46)
}

func (e *element) InnerText() (string, error) {
	res, err := e.d.waitOne(e.sel, opText, nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

func (e *element) AllInnerTexts() ([]string, error) {
	res, err := e.d.eval(e.sel, opTexts)
	if err != nil {
		return nil, err
	}
	if res.Texts == nil {
		return []string{}, nil
	}
	return res.Texts, nil
}

func (e *element) IsVisible() (bool, error) {
	res, err := e.d.eval(e.sel, opVisible)
	if err != nil {
		return false, err
	}
	switch {
	case res.Count == 0:
		return false, nil
	case res.Count > 1:
		return false, classify(e.sel, res.Count)
	}
	return res.Visible, nil
}

func (e *element) Count() (int, error) {
	res, err := e.d.eval(e.sel, opCount)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

// DragTo presses on this element, moves in steps onto target and releases.
func (e *element) DragTo(target core.Element) error {
	if bad, ok := target.(*core.InvalidElement); ok {
		return bad.Reason()
	}
	t, ok := target.(*element)
	if !ok {
		return fmt.Errorf("drag target %s does not belong to the cdp driver", target.Selector().String())
	}
	from, err := e.d.center(e.sel)
	if err != nil {
		return err
	}
	to, err := e.d.center(t.sel)
	if err != nil {
		return err
	}
	e.d.pause()

	actions := []chromedp.Action{
		e.d.mouse(input.MouseMoved, from, input.None, 0),
		e.d.mouse(input.MousePressed, from, input.Left, 1),
	}
	for _, p := range dragPath(from, to, dragSteps) {
		actions = append(actions, e.d.mouse(input.MouseMoved, p, input.Left, 1))
	}
	actions = append(actions, e.d.mouse(input.MouseReleased, to, input.Left, 0))
	return e.d.run(actions...)
}
