package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMapAllureStatus(t *testing.T) {
	tests := map[Status]string{
		StatusPassed:  "passed",
		StatusFailed:  "failed",
		StatusSkipped: "skipped",
		StatusRunning: "unknown",
	}
	for in, want := range tests {
		if got := mapAllureStatus(in); got != want {
			t.Errorf("mapAllureStatus(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestFnv32aHashStable(t *testing.T) {
	a := fnv32aHash("Create Trello Board")
	if a != fnv32aHash("Create Trello Board") {
		t.Error("hash is not stable")
	}
	if a == fnv32aHash("Add date to the card") {
		t.Error("distinct names hashed equal")
	}
	if len(a) != 8 {
		t.Errorf("hash length = %d, want 8", len(a))
	}
}

func TestGenerateAllure(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{
		OutputDir: dir,
		Title:     "Board Run",
		Browser:   Browser{Engine: "firefox", BaseURL: "https://trello.com"},
		Runner:    RunnerInfo{Version: "dev", Driver: "mock"},
		Allure:    true,
		Now:       newFakeClock().Now,
	})
	ok := r.CreateTest("Create Trello Board")
	ok.Log(LevelInfo, "fill title")
	_ = ok.Pass()
	bad := r.CreateTest("Drag a card between lists")
	bad.Attach("failure.png", "image/png", []byte("png"))
	_ = bad.Fail("index 0 should be 1")

	if err := r.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	allureDir := filepath.Join(dir, "allure-results")
	entries, err := os.ReadDir(allureDir)
	if err != nil {
		t.Fatal(err)
	}

	var results []AllureResult
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), "-result.json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(allureDir, e.Name()))
		if err != nil {
			t.Fatal(err)
		}
		var res AllureResult
		if err := json.Unmarshal(data, &res); err != nil {
			t.Fatal(err)
		}
		results = append(results, res)
	}
	if len(results) != 2 {
		t.Fatalf("got %d allure results, want 2", len(results))
	}

	byName := map[string]AllureResult{}
	for _, res := range results {
		byName[res.Name] = res
	}
	drag := byName["Drag a card between lists"]
	if drag.Status != "failed" || drag.StatusDetails.Message != "index 0 should be 1" {
		t.Errorf("drag result = %+v", drag)
	}
	if len(drag.Attachments) != 1 {
		t.Fatalf("drag attachments = %+v", drag.Attachments)
	}
	if _, err := os.Stat(filepath.Join(allureDir, drag.Attachments[0].Source)); err != nil {
		t.Errorf("attachment not copied: %v", err)
	}
	if create := byName["Create Trello Board"]; len(create.Steps) != 2 {
		t.Errorf("create steps = %+v", create.Steps)
	}

	env, err := os.ReadFile(filepath.Join(allureDir, "environment.properties"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(env), "browser.engine=firefox") {
		t.Errorf("environment.properties = %q", env)
	}
	if _, err := os.Stat(filepath.Join(allureDir, "categories.json")); err != nil {
		t.Errorf("categories.json missing: %v", err)
	}
}
