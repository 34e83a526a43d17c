// Package locator describes UI elements independently of the automation engine.
//
// A Selector is pure data: page objects build them, drivers compile them into
// engine-native queries. Strategies are listed in order of preference; structural
// and text matches are a fallback for elements without stable identifiers.
package locator

import (
	"fmt"
	"strings"
)

// Strategy is the primary match strategy of a selector.
type Strategy string

// Strategy values, most stable first.
const (
	ByTestID      Strategy = "testid"      // data-testid attribute
	ByLabel       Strategy = "label"       // aria-label or associated <label>
	ByPlaceholder Strategy = "placeholder" // placeholder attribute
	ByID          Strategy = "id"          // id attribute
	ByTag         Strategy = "tag"         // element tag name
	ByText        Strategy = "text"        // element's own text
)

// Selector identifies one element or a collection of elements.
type Selector struct {
	By    Strategy `json:"by"`
	Value string   `json:"value"`

	// Text refinements
	Exact    *string `json:"exact,omitempty"`    // element text must equal (trimmed)
	Contains string  `json:"contains,omitempty"` // element text must contain

	// Structural refinements
	Has    *Selector `json:"has,omitempty"`    // must contain a matching descendant
	Parent *Selector `json:"parent,omitempty"` // must be a descendant of a match
	After  *Selector `json:"after,omitempty"`  // must be a following sibling of a match

	// Index pick after all filters. Indexed=false keeps every match; Index -1 is the last.
	Indexed bool `json:"indexed,omitempty"`
	Index   int  `json:"index,omitempty"`
}

// TestID selects by data-testid.
func TestID(id string) Selector { return Selector{By: ByTestID, Value: id} }

// Label selects by accessible label.
func Label(label string) Selector { return Selector{By: ByLabel, Value: label} }

// Placeholder selects inputs by placeholder text.
func Placeholder(text string) Selector { return Selector{By: ByPlaceholder, Value: text} }

// ID selects by id attribute.
func ID(id string) Selector { return Selector{By: ByID, Value: id} }

// Tag selects by element tag name.
func Tag(tag string) Selector { return Selector{By: ByTag, Value: strings.ToLower(tag)} }

// Text selects elements whose own text equals text.
func Text(text string) Selector { return Selector{By: ByText, Value: text} }

// WithText returns a copy that only matches elements whose trimmed text equals text.
func (s Selector) WithText(text string) Selector {
	s.Exact = &text
	return s
}

// Containing returns a copy that only matches elements whose text contains text.
func (s Selector) Containing(text string) Selector {
	s.Contains = text
	return s
}

// Having returns a copy that only matches elements containing a descendant matching child.
func (s Selector) Having(child Selector) Selector {
	s.Has = &child
	return s
}

// In returns a copy scoped to descendants of parent.
func (s Selector) In(parent Selector) Selector {
	s.Parent = &parent
	return s
}

// FollowingSibling returns a copy that only matches following siblings of anchor.
func (s Selector) FollowingSibling(anchor Selector) Selector {
	s.After = &anchor
	return s
}

// Nth returns a copy that picks the i-th match (0-based).
func (s Selector) Nth(i int) Selector {
	s.Indexed = true
	s.Index = i
	return s
}

// First returns a copy that picks the first match.
func (s Selector) First() Selector { return s.Nth(0) }

// Last returns a copy that picks the last match.
func (s Selector) Last() Selector { return s.Nth(-1) }

// Pick applies the index pick of s to a number of matches.
// Returns the chosen position and whether it exists.
func (s Selector) Pick(n int) (int, bool) {
	if !s.Indexed {
		return 0, n > 0
	}
	i := s.Index
	if i < 0 {
		i = n + i
	}
	return i, i >= 0 && i < n
}

// Validate reports selectors that cannot be resolved by any driver.
func (s Selector) Validate() error {
	switch s.By {
	case ByTestID, ByLabel, ByPlaceholder, ByID, ByTag, ByText:
	default:
		return fmt.Errorf("unknown locator strategy %q", s.By)
	}
	if s.Value == "" {
		return fmt.Errorf("%s locator requires a value", s.By)
	}
	for _, nested := range []*Selector{s.Has, s.Parent, s.After} {
		if nested == nil {
			continue
		}
		if err := nested.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String renders a stable, human readable description.
func (s Selector) String() string {
	var b strings.Builder
	if s.Parent != nil {
		b.WriteString(s.Parent.String())
		b.WriteString(" >> ")
	}
	fmt.Fprintf(&b, "%s=%q", s.By, s.Value)
	if s.Exact != nil {
		fmt.Fprintf(&b, "[text=%q]", *s.Exact)
	}
	if s.Contains != "" {
		fmt.Fprintf(&b, "[text*=%q]", s.Contains)
	}
	if s.Has != nil {
		fmt.Fprintf(&b, "[has %s]", s.Has.String())
	}
	if s.After != nil {
		fmt.Fprintf(&b, "[after %s]", s.After.String())
	}
	if s.Indexed {
		if s.Index < 0 {
			b.WriteString("[last]")
		} else {
			fmt.Fprintf(&b, "[%d]", s.Index)
		}
	}
	return b.String()
}
