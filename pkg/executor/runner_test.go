package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
	"github.com/devicelab-dev/board-runner/pkg/report"
	"github.com/devicelab-dev/board-runner/pkg/scenario"
)

func newReporter(t *testing.T) *report.Reporter {
	t.Helper()
	return report.New(report.Config{OutputDir: t.TempDir(), Title: "runner test"})
}

func pass(*scenario.T, scenario.Args) error { return nil }

func TestRunOrderAndCases(t *testing.T) {
	var order []string
	record := func(st *scenario.T, a scenario.Args) error {
		order = append(order, st.Name())
		return nil
	}
	plan := []scenario.Scenario{
		{Name: "Login", Provides: []string{"session"}, Run: record},
		{
			Name:     "Add List on Board: {list}",
			Requires: []string{"session"},
			Cases: []scenario.Case{
				{Args: scenario.Args{"list": "Prospects"}},
				{Args: scenario.Args{"list": "In Progress"}},
			},
			Run: record,
		},
	}

	var started []int
	rep := newReporter(t)
	res, err := New(rep, RunnerConfig{
		OnScenarioStart: func(idx, total int, _ string) {
			assert.Equal(t, 3, total)
			started = append(started, idx)
		},
	}).Run(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, []string{"Login", "Add List on Board: Prospects", "Add List on Board: In Progress"}, order)
	assert.Equal(t, []int{0, 1, 2}, started)
	assert.Equal(t, report.StatusPassed, res.Status)
	assert.Equal(t, 3, res.Passed)

	idx := rep.Index()
	require.Len(t, idx.Scenarios, 3)
	assert.Equal(t, "Add List on Board: In Progress", idx.Scenarios[2].Name)
	assert.Equal(t, report.StatusPassed, idx.Scenarios[2].Status)
}

func TestRunCascadeIsVisible(t *testing.T) {
	listRan := false
	plan := []scenario.Scenario{
		{Name: "Create board", Provides: []string{"board"}, Run: func(*scenario.T, scenario.Args) error {
			return core.ErrElementNotFound.WithMessage("create-board-submit-button not found")
		}},
		{Name: "Add list", Requires: []string{"board"}, Run: func(*scenario.T, scenario.Args) error {
			listRan = true
			return core.ErrElementNotFound.WithMessage("list-composer-button not found")
		}},
		{Name: "Independent", Run: pass},
	}

	var shot int
	rep := newReporter(t)
	res, err := New(rep, RunnerConfig{
		Screenshot: func() ([]byte, error) { shot++; return []byte("png"), nil },
	}).Run(context.Background(), plan)
	require.NoError(t, err)

	assert.True(t, listRan, "dependent scenario must still run")
	assert.Equal(t, report.StatusFailed, res.Status)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 1, res.Passed)
	assert.Equal(t, 2, shot)

	list := res.Scenarios[1]
	assert.Equal(t, []string{"board"}, list.UnmetPreconditions)
	assert.Equal(t, core.ErrCategoryElement, list.Category)
	assert.Empty(t, res.Scenarios[0].UnmetPreconditions)
	assert.Empty(t, res.Scenarios[2].UnmetPreconditions)
}

func TestRunConditionFailsIfAnyProviderFails(t *testing.T) {
	plan := []scenario.Scenario{
		{
			Name: "Add list {list}",
			Cases: []scenario.Case{
				{Args: scenario.Args{"list": "A"}, Provides: []string{"lists"}},
				{Args: scenario.Args{"list": "B"}, Provides: []string{"lists"}},
			},
			Run: func(_ *scenario.T, a scenario.Args) error {
				if a.Get("list") == "A" {
					return errors.New("boom")
				}
				return nil
			},
		},
		{Name: "Use lists", Requires: []string{"lists"}, Run: pass},
	}
	res, err := New(newReporter(t), RunnerConfig{}).Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"lists"}, res.Scenarios[2].UnmetPreconditions)
	assert.Equal(t, report.StatusPassed, res.Scenarios[2].Status)
}

func TestRunAssertionAndPanic(t *testing.T) {
	plan := []scenario.Scenario{
		{Name: "Assert", Run: func(st *scenario.T, _ scenario.Args) error {
			assert.Equal(st, 1, 2)
			return nil
		}},
		{Name: "Panic", Run: func(*scenario.T, scenario.Args) error {
			var m map[string]int
			m["x"] = 1
			return nil
		}},
		{Name: "After", Run: pass},
	}
	res, err := New(newReporter(t), RunnerConfig{}).Run(context.Background(), plan)
	require.NoError(t, err)

	assert.Equal(t, report.StatusFailed, res.Scenarios[0].Status)
	assert.Equal(t, core.ErrCategoryAssertion, res.Scenarios[0].Category)
	assert.Equal(t, report.StatusFailed, res.Scenarios[1].Status)
	assert.Contains(t, res.Scenarios[1].Error, "panic")
	assert.Equal(t, report.StatusPassed, res.Scenarios[2].Status)
}

func TestRunCancelledSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	plan := []scenario.Scenario{
		{Name: "First", Run: func(*scenario.T, scenario.Args) error { cancel(); return nil }},
		{Name: "Second", Run: pass},
		{Name: "Third", Run: pass},
	}
	rep := newReporter(t)
	res, err := New(rep, RunnerConfig{}).Run(ctx, plan)
	require.NoError(t, err)

	assert.Equal(t, report.StatusPassed, res.Scenarios[0].Status)
	assert.Equal(t, report.StatusSkipped, res.Scenarios[1].Status)
	assert.Equal(t, report.StatusSkipped, res.Scenarios[2].Status)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 3, rep.Index().Summary.Total)
}

func TestRunInvalidPlan(t *testing.T) {
	plan := []scenario.Scenario{{Name: "Needs board", Requires: []string{"board"}, Run: pass}}
	rep := newReporter(t)
	_, err := New(rep, RunnerConfig{}).Run(context.Background(), plan)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
	assert.Empty(t, rep.Index().Scenarios)
}

func TestRunScreenshotFailureLogged(t *testing.T) {
	plan := []scenario.Scenario{{Name: "Fails", Run: func(*scenario.T, scenario.Args) error {
		return errors.New("nope")
	}}}
	rep := newReporter(t)
	res, err := New(rep, RunnerConfig{
		Screenshot: func() ([]byte, error) { return nil, errors.New("page closed") },
	}).Run(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, report.StatusFailed, res.Status)
	assert.Equal(t, core.ErrCategoryUnknown, res.Scenarios[0].Category)
}

func TestBuildRunResult(t *testing.T) {
	tests := []struct {
		name     string
		statuses []report.Status
		want     report.Status
	}{
		{"empty", nil, report.StatusPassed},
		{"all passed", []report.Status{report.StatusPassed, report.StatusPassed}, report.StatusPassed},
		{"one failed", []report.Status{report.StatusPassed, report.StatusFailed}, report.StatusFailed},
		{"all skipped", []report.Status{report.StatusSkipped}, report.StatusSkipped},
		{"passed then skipped", []report.Status{report.StatusPassed, report.StatusSkipped}, report.StatusPassed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]ScenarioResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i].Status = s
			}
			if got := buildRunResult(results, 0).Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunLogsScenarioFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "board-runner.log")
	require.NoError(t, logger.Init(logPath))
	defer logger.Close()

	plan := []scenario.Scenario{
		{Name: "Create Board", Run: pass},
		{Name: "Archive Card", Run: func(*scenario.T, scenario.Args) error {
			return core.ErrElementNotFound.WithMessage("card Beta not found")
		}},
	}
	_, err := New(newReporter(t), RunnerConfig{}).Run(context.Background(), plan)
	require.NoError(t, err)
	logger.Close()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `scenario="Create Board"`)
	assert.Contains(t, out, "ordinal=1")
	assert.Contains(t, out, `scenario="Archive Card"`)
	assert.Contains(t, out, "category=element")
	assert.Contains(t, out, "card Beta not found")
}
