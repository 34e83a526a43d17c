package playwright

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	pw "github.com/playwright-community/playwright-go"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// finder starts a query, either from the page or inside a located element.
type finder interface {
	testID(id string) pw.Locator
	label(text string) pw.Locator
	placeholder(text string) pw.Locator
	css(selector string) pw.Locator
	text(text string) pw.Locator
}

type pageFinder struct{ page pw.Page }

func (f pageFinder) testID(id string) pw.Locator { return f.page.GetByTestId(id) }
func (f pageFinder) label(text string) pw.Locator {
	return f.page.GetByLabel(text, pw.PageGetByLabelOptions{Exact: pw.Bool(true)})
}
func (f pageFinder) placeholder(text string) pw.Locator {
	return f.page.GetByPlaceholder(text, pw.PageGetByPlaceholderOptions{Exact: pw.Bool(true)})
}
func (f pageFinder) css(selector string) pw.Locator { return f.page.Locator(selector) }
func (f pageFinder) text(text string) pw.Locator {
	return f.page.GetByText(text, pw.PageGetByTextOptions{Exact: pw.Bool(true)})
}

type locatorFinder struct{ loc pw.Locator }

func (f locatorFinder) testID(id string) pw.Locator { return f.loc.GetByTestId(id) }
func (f locatorFinder) label(text string) pw.Locator {
	return f.loc.GetByLabel(text, pw.LocatorGetByLabelOptions{Exact: pw.Bool(true)})
}
func (f locatorFinder) placeholder(text string) pw.Locator {
	return f.loc.GetByPlaceholder(text, pw.LocatorGetByPlaceholderOptions{Exact: pw.Bool(true)})
}
func (f locatorFinder) css(selector string) pw.Locator { return f.loc.Locator(selector) }
func (f locatorFinder) text(text string) pw.Locator {
	return f.loc.GetByText(text, pw.LocatorGetByTextOptions{Exact: pw.Bool(true)})
}

// compile turns a selector into a Playwright locator. root queries from the
// page; Has and After refinements are compiled from root as well, since
// Playwright evaluates them relative to the outer element.
func compile(root finder, sel locator.Selector) pw.Locator {
	scope := root
	if sel.Parent != nil {
		scope = locatorFinder{loc: compile(root, *sel.Parent)}
	}

	var loc pw.Locator
	switch sel.By {
	case locator.ByTestID:
		loc = scope.testID(sel.Value)
	case locator.ByLabel:
		loc = scope.label(sel.Value)
	case locator.ByPlaceholder:
		loc = scope.placeholder(sel.Value)
	case locator.ByID:
		loc = scope.css(fmt.Sprintf("[id=%q]", sel.Value))
	case locator.ByText:
		loc = scope.text(sel.Value)
	default:
		loc = scope.css(sel.Value)
	}

	if sel.Exact != nil {
		loc = loc.Filter(pw.LocatorFilterOptions{HasText: exactText(*sel.Exact)})
	}
	if sel.Contains != "" {
		loc = loc.Filter(pw.LocatorFilterOptions{HasText: sel.Contains})
	}
	if sel.Has != nil {
		loc = loc.Filter(pw.LocatorFilterOptions{Has: compile(root, *sel.Has)})
	}
	if sel.After != nil {
		siblings := compile(root, *sel.After).Locator("xpath=following-sibling::*")
		loc = siblings.And(loc)
	}

	if sel.Indexed {
		if sel.Index < 0 {
			loc = loc.Last()
		} else {
			loc = loc.Nth(sel.Index)
		}
	}
	return loc
}

// exactText matches the whole trimmed text of an element.
func exactText(s string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*` + regexp.QuoteMeta(strings.TrimSpace(s)) + `\s*$`)
}

// mapError classifies a Playwright error for sel.
func mapError(sel locator.Selector, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case strings.Contains(err.Error(), "strict mode violation"):
		return core.ErrAmbiguousMatch.WithMessage(fmt.Sprintf("%s resolved to more than one element", sel.String())).WithCause(err)
	case errors.Is(err, pw.ErrTimeout):
		return core.ErrElementNotFound.WithMessage("element not found: " + sel.String()).WithCause(err)
	}
	return err
}
