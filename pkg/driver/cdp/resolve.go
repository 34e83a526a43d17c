package cdp

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

//go:embed resolve.js
var resolverJS string

// Resolver operations evaluated in the page.
const (
	opCount   = "count"   // number of matches
	opTexts   = "texts"   // innerText of every match
	opText    = "text"    // innerText of the single match
	opVisible = "visible" // visibility of the single match
	opBox     = "box"     // scroll into view, center point of the single match
	opFocus   = "focus"   // focus and select the single match if editable
)

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// result is what resolve.js returns.
type result struct {
	Count   int      `json:"count"`
	Texts   []string `json:"texts,omitempty"`
	Text    string   `json:"text,omitempty"`
	Visible bool     `json:"visible,omitempty"`
	Input   bool     `json:"input,omitempty"`
	Box     *point   `json:"box,omitempty"`
}

// script builds the expression that runs op for sel in the page.
func script(sel locator.Selector, op string) (string, error) {
	data, err := json.Marshal(sel)
	if err != nil {
		return "", fmt.Errorf("encode selector: %w", err)
	}
	return fmt.Sprintf("(%s)(%s, %q)", strings.TrimSpace(resolverJS), data, op), nil
}

// classify turns the match count of a single-element operation into an error.
func classify(sel locator.Selector, count int) error {
	switch {
	case count == 0:
		return core.ErrElementNotFound.WithMessage("element not found: " + sel.String())
	case count > 1:
		return core.ErrAmbiguousMatch.WithMessage(fmt.Sprintf("%s resolved to %d elements", sel.String(), count))
	}
	return nil
}

// globPattern converts a URL glob ("**/boards") into a regular expression.
// ** matches any characters, * any characters except '/', ? a single one.
func globPattern(glob string) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}

// dragPath returns the intermediate pointer positions from one point to
// another, ending exactly on to.
func dragPath(from, to point, steps int) []point {
	if steps < 1 {
		steps = 1
	}
	path := make([]point, steps)
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		path[i-1] = point{
			X: from.X + (to.X-from.X)*f,
			Y: from.Y + (to.Y-from.Y)*f,
		}
	}
	return path
}
