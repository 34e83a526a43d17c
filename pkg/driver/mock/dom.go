package mock

import (
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/locator"
)

// Node is one rendered element of the simulated page.
type Node struct {
	Tag         string
	ID          string
	TestID      string
	Label       string // aria-label
	Placeholder string
	Text        string // own text, not including children
	Value       string // current value of inputs

	Children []*Node
	parent   *Node

	input        bool
	onClick      func()
	onRightClick func()
	onFill       func(string)

	// Drag and drop
	card     *Card // set on a card and its name anchor
	dropList *List // set on drop targets
	dropOnto *Card // drop target card, nil appends to dropList
}

func el(tag string, children ...*Node) *Node {
	n := &Node{Tag: tag}
	n.append(children...)
	return n
}

func (n *Node) append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

func (n *Node) testID(id string) *Node { n.TestID = id; return n }
func (n *Node) text(s string) *Node { n.Text = s; return n }
func (n *Node) label(s string) *Node { n.Label = s; return n }
func (n *Node) id(s string) *Node { n.ID = s; return n }
func (n *Node) click(fn func()) *Node { n.onClick = fn; return n }
func (n *Node) rightClick(fn func()) *Node { n.onRightClick = fn; return n }

func (n *Node) field(placeholder, value string, fill func(string)) *Node {
	n.input = true
	n.Placeholder = placeholder
	n.Value = value
	n.onFill = fill
	return n
}

// InnerText returns the rendered text of the node and its descendants,
// one line per text-bearing element.
func (n *Node) InnerText() string {
	var parts []string
	n.walk(func(c *Node) {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

// walk visits n and its descendants in document order.
func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

func (n *Node) hasAncestor(set map[*Node]bool) bool {
	for p := n.parent; p != nil; p = p.parent {
		if set[p] {
			return true
		}
	}
	return false
}

func (n *Node) precededBy(set map[*Node]bool) bool {
	if n.parent == nil {
		return false
	}
	for _, sib := range n.parent.Children {
		if sib == n {
			return false
		}
		if set[sib] {
			return true
		}
	}
	return false
}

// resolve returns every node under root matching sel, in document order.
func resolve(root *Node, sel locator.Selector) []*Node {
	var scope map[*Node]bool
	if sel.Parent != nil {
		scope = toSet(resolve(root, *sel.Parent))
		if len(scope) == 0 {
			return nil
		}
	}
	var anchors map[*Node]bool
	if sel.After != nil {
		anchors = toSet(resolve(root, *sel.After))
		if len(anchors) == 0 {
			return nil
		}
	}

	var matches []*Node
	root.walk(func(n *Node) {
		if scope != nil && !n.hasAncestor(scope) {
			return
		}
		if !matchPrimary(n, sel) || !matchText(n, sel) {
			return
		}
		if sel.Has != nil && !hasDescendant(n, *sel.Has) {
			return
		}
		if anchors != nil && !n.precededBy(anchors) {
			return
		}
		matches = append(matches, n)
	})

	if !sel.Indexed {
		return matches
	}
	if i, ok := sel.Pick(len(matches)); ok {
		return matches[i : i+1]
	}
	return nil
}

func matchPrimary(n *Node, sel locator.Selector) bool {
	switch sel.By {
	case locator.ByTestID:
		return n.TestID == sel.Value
	case locator.ByLabel:
		return n.Label == sel.Value
	case locator.ByPlaceholder:
		return n.Placeholder == sel.Value
	case locator.ByID:
		return n.ID == sel.Value
	case locator.ByTag:
		return n.Tag == sel.Value
	case locator.ByText:
		return strings.TrimSpace(n.Text) == sel.Value
	}
	return false
}

func matchText(n *Node, sel locator.Selector) bool {
	if sel.Exact == nil && sel.Contains == "" {
		return true
	}
	text := n.InnerText()
	if sel.Exact != nil && strings.TrimSpace(text) != *sel.Exact {
		return false
	}
	if sel.Contains != "" && !strings.Contains(strings.ToLower(text), strings.ToLower(sel.Contains)) {
		return false
	}
	return true
}

func hasDescendant(n *Node, child locator.Selector) bool {
	for _, c := range n.Children {
		if len(resolve(c, child)) > 0 {
			return true
		}
	}
	return false
}

func toSet(nodes []*Node) map[*Node]bool {
	set := make(map[*Node]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}
