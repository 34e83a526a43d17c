package cdp

import (
	"errors"
	"strings"
	"testing"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/locator"
)

func TestGlobPattern(t *testing.T) {
	tests := []struct {
		glob string
		url  string
		want bool
	}{
		{"**/boards", "http://localhost:8080/boards", true},
		{"**/boards", "http://localhost:8080/boards/1", false},
		{"**/b/*", "http://localhost:8080/b/42", true},
		{"**/b/*", "http://localhost:8080/b/42/cards", false},
		{"**/login?next=*", "http://localhost:8080/login?next=x", true},
		{"**/board?", "http://localhost:8080/boards", true},
		{"http://localhost:8080/", "http://localhost:8080/", true},
		{"http://localhost:8080/", "http://localhost:8080/boards", false},
	}
	for _, tt := range tests {
		t.Run(tt.glob+" "+tt.url, func(t *testing.T) {
			if got := globPattern(tt.glob).MatchString(tt.url); got != tt.want {
				t.Errorf("globPattern(%q).MatchString(%q) = %v, want %v", tt.glob, tt.url, got, tt.want)
			}
		})
	}
}

func TestScript(t *testing.T) {
	sel := locator.TestID("list-add-card-button").In(
		locator.TestID("list").Having(locator.TestID("list-name").WithText("Prospects")),
	)
	expr, err := script(sel, opBox)
	if err != nil {
		t.Fatalf("script() error = %v", err)
	}
	if !strings.HasPrefix(expr, "((function (sel, op)") {
		t.Errorf("script() should call the resolver, got prefix %q", expr[:30])
	}
	for _, want := range []string{
		`"by":"testid","value":"list-add-card-button"`,
		`"parent":{"by":"testid","value":"list"`,
		`"exact":"Prospects"`,
		`, "box")`,
	} {
		if !strings.Contains(expr, want) {
			t.Errorf("script() missing %s", want)
		}
	}
}

func TestClassify(t *testing.T) {
	sel := locator.TestID("card")

	if err := classify(sel, 1); err != nil {
		t.Errorf("classify(1) = %v", err)
	}
	if err := classify(sel, 0); !errors.Is(err, core.ErrElementNotFound) {
		t.Errorf("classify(0) = %v", err)
	}
	err := classify(sel, 3)
	if !errors.Is(err, core.ErrAmbiguousMatch) {
		t.Errorf("classify(3) = %v", err)
	}
	if !strings.Contains(err.Error(), "3 elements") {
		t.Errorf("message should carry the count: %v", err)
	}
}

func TestDragPath(t *testing.T) {
	path := dragPath(point{X: 0, Y: 0}, point{X: 100, Y: 50}, 4)
	if len(path) != 4 {
		t.Fatalf("len = %d, want 4", len(path))
	}
	if path[0] != (point{X: 25, Y: 12.5}) {
		t.Errorf("first step = %+v", path[0])
	}
	if path[3] != (point{X: 100, Y: 50}) {
		t.Errorf("last step = %+v, want the target", path[3])
	}

	if got := dragPath(point{}, point{X: 1, Y: 1}, 0); len(got) != 1 {
		t.Errorf("steps < 1 should give a single move, got %d", len(got))
	}
}

func TestLaunchRejectsOtherEngines(t *testing.T) {
	for _, engine := range []string{core.EngineFirefox, core.EngineWebKit, "opera"} {
		if _, err := NewLauncher("").Launch(core.LaunchOptions{Engine: engine}); err == nil {
			t.Errorf("Launch(%s) should fail", engine)
		}
	}
}
