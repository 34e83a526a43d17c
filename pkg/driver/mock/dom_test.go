package mock

import (
	"testing"

	"github.com/devicelab-dev/board-runner/pkg/locator"
)

func sampleTree() *Node {
	return el("body",
		el("div",
			el("h2").testID("list-name").text("Prospects"),
			el("ol",
				el("li", el("a").testID("card-name").text("Alpha")).testID("list-card"),
				el("li", el("a").testID("card-name").text("Beta")).testID("list-card"),
			).testID("list-cards"),
		).testID("list"),
		el("div",
			el("h2").testID("list-name").text("In Progress"),
			el("ol",
				el("li", el("a").testID("card-name").text("Gamma")).testID("list-card"),
			).testID("list-cards"),
		).testID("list"),
		el("section",
			el("div", el("label").text("Start date"), el("label").testID("clickable-checkbox").id("start")),
			el("div", el("label").text("Due date"), el("label").testID("clickable-checkbox").id("due")),
		),
		el("button").label("Close dialog"),
		el("textarea").field("Enter list name…", "", func(string) {}),
	)
}

func texts(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.InnerText()
	}
	return out
}

func TestResolve(t *testing.T) {
	root := sampleTree()
	inProgress := locator.TestID("list").Having(locator.TestID("list-name").WithText("In Progress"))

	tests := []struct {
		name string
		sel  locator.Selector
		want []string
	}{
		{"testid", locator.TestID("card-name"), []string{"Alpha", "Beta", "Gamma"}},
		{"exact text", locator.TestID("card-name").WithText("Beta"), []string{"Beta"}},
		{"exact text is not substring", locator.TestID("card-name").WithText("Bet"), []string{}},
		{"contains ignores case", locator.TestID("card-name").Containing("alp"), []string{"Alpha"}},
		{"text strategy", locator.Text("Gamma"), []string{"Gamma"}},
		{"scoped by parent", locator.TestID("list-card").In(inProgress), []string{"Gamma"}},
		{"nth", locator.TestID("card-name").Nth(1), []string{"Beta"}},
		{"last", locator.TestID("card-name").Last(), []string{"Gamma"}},
		{"out of range", locator.TestID("card-name").Nth(5), []string{}},
		{"label", locator.Label("Close dialog"), []string{""}},
		{"placeholder", locator.Placeholder("Enter list name…"), []string{""}},
		{"missing parent", locator.TestID("list-card").In(locator.TestID("nope")), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(resolve(root, tt.sel))
			if len(got) != len(tt.want) {
				t.Fatalf("resolve(%s) = %q, want %q", tt.sel, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("resolve(%s)[%d] = %q, want %q", tt.sel, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolve_FollowingSibling(t *testing.T) {
	root := sampleTree()

	for label, wantID := range map[string]string{"Start date": "start", "Due date": "due"} {
		sel := locator.TestID("clickable-checkbox").FollowingSibling(locator.Tag("label").WithText(label))
		nodes := resolve(root, sel)
		if len(nodes) != 1 {
			t.Fatalf("%s: got %d matches, want 1", label, len(nodes))
		}
		if nodes[0].ID != wantID {
			t.Errorf("%s: got checkbox %q, want %q", label, nodes[0].ID, wantID)
		}
	}
}

func TestInnerText_IncludesDescendants(t *testing.T) {
	item := el("li",
		el("a").text("Public Pool"),
		el("span", el("span"), el("span").text("Jan 02 - Jan 03")),
	)
	if got := item.InnerText(); got != "Public Pool\nJan 02 - Jan 03" {
		t.Errorf("InnerText() = %q", got)
	}
}

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		url     string
		want    bool
	}{
		{"**/boards", "https://trello.com/u/qa/boards", true},
		{"**/boards", "https://trello.com/u/qa/boards/extra", false},
		{"https://trello.com/*/boards", "https://trello.com/u/boards", true},
		{"https://trello.com/*/boards", "https://trello.com/u/qa/boards", false},
		{"https://trello.com/login", "https://trello.com/login", true},
		{"https://trello.com/login", "https://trello.com/login/", true},
	}
	for _, tt := range tests {
		if got := globMatch(tt.pattern, tt.url); got != tt.want {
			t.Errorf("globMatch(%q, %q) = %v, want %v", tt.pattern, tt.url, got, tt.want)
		}
	}
}
