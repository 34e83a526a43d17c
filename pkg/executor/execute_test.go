package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/driver/mock"
	"github.com/devicelab-dev/board-runner/pkg/report"
	"github.com/devicelab-dev/board-runner/pkg/scenario"
)

const baseURL = "https://trello.test"

type harness struct {
	cfg      *config.Config
	launcher *mock.Launcher
	reporter *report.Reporter
	dir      string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Board = config.Board{BaseURL: baseURL, Email: "qa@example.com", Password: "secret"}
	cfg.Report.OutputDir = dir
	return &harness{
		cfg:      cfg,
		launcher: mock.NewLauncher(mock.NewApp(baseURL, "qa@example.com", "secret")),
		reporter: report.New(report.Config{OutputDir: dir, Title: cfg.Report.Title}),
		dir:      dir,
	}
}

func (h *harness) options(build BuildFunc) Options {
	return Options{Config: h.cfg, Launcher: h.launcher, Reporter: h.reporter, Build: build}
}

func titlePlan(d core.Driver) ([]scenario.Scenario, error) {
	return []scenario.Scenario{
		{Name: "Landing title", Run: func(st *scenario.T, _ scenario.Args) error {
			title, err := d.Title()
			if err != nil {
				return err
			}
			assert.Contains(st, title, "Trello")
			return nil
		}},
	}, nil
}

func TestExecute(t *testing.T) {
	h := newHarness(t)
	var opened *core.PlatformInfo
	opts := h.options(titlePlan)
	opts.OnSessionOpen = func(info *core.PlatformInfo) { opened = info }

	res, err := Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, report.StatusPassed, res.Status)
	require.NotNil(t, opened)
	assert.Equal(t, "mock", opened.Driver)

	assert.True(t, h.launcher.Browser.Closed)
	assert.True(t, h.launcher.Browser.Released)

	idx, details, err := report.ReadReport(h.dir)
	require.NoError(t, err)
	assert.Equal(t, report.StatusPassed, idx.Status)
	assert.Equal(t, core.EngineChromium, idx.Browser.Engine)
	assert.Equal(t, baseURL, idx.Browser.BaseURL)
	require.Len(t, details, 1)
	assert.Equal(t, "Landing title", details[0].Name)
}

func TestExecuteSetupFailure(t *testing.T) {
	h := newHarness(t)
	h.launcher.FailLaunch = errors.New("browser binary missing")
	built := false

	res, err := Execute(context.Background(), h.options(func(core.Driver) ([]scenario.Scenario, error) {
		built = true
		return nil, nil
	}))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.False(t, built)

	idx, details, rerr := report.ReadReport(h.dir)
	require.NoError(t, rerr)
	assert.Empty(t, details)
	assert.Empty(t, idx.Scenarios)
	require.NotNil(t, idx.Setup)
	assert.Equal(t, "setup", idx.Setup.Type)
	assert.Equal(t, report.StatusFailed, idx.Status)
}

func TestExecuteBuildFailure(t *testing.T) {
	h := newHarness(t)
	_, err := Execute(context.Background(), h.options(func(core.Driver) ([]scenario.Scenario, error) {
		return nil, errors.New("bad data")
	}))
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.True(t, h.launcher.Browser.Released)
}

func TestExecuteTeardownFailureStillFlushes(t *testing.T) {
	h := newHarness(t)
	h.launcher.FailClose = errors.New("close hung")

	res, err := Execute(context.Background(), h.options(titlePlan))
	require.NotNil(t, res)
	assert.Equal(t, report.StatusPassed, res.Status)
	assert.True(t, errors.Is(err, core.ErrTeardownFailure))
	assert.True(t, h.launcher.Browser.Released)

	_, details, rerr := report.ReadReport(h.dir)
	require.NoError(t, rerr)
	assert.Len(t, details, 1)
}

func TestExecuteFailureAttachesScreenshot(t *testing.T) {
	h := newHarness(t)
	res, err := Execute(context.Background(), h.options(func(core.Driver) ([]scenario.Scenario, error) {
		return []scenario.Scenario{{Name: "Broken", Run: func(*scenario.T, scenario.Args) error {
			return core.ErrAssertionFailed.WithMessage("board name mismatch")
		}}}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, report.StatusFailed, res.Status)

	_, details, rerr := report.ReadReport(h.dir)
	require.NoError(t, rerr)
	require.Len(t, details[0].Attachments, 1)
	assert.Equal(t, "image/png", details[0].Attachments[0].Type)
}

func TestExecuteInvalidPlanIsSetupFailure(t *testing.T) {
	h := newHarness(t)
	ran := false

	res, err := Execute(context.Background(), h.options(func(core.Driver) ([]scenario.Scenario, error) {
		return []scenario.Scenario{{
			Name:     "Needs board",
			Requires: []string{"board"},
			Run: func(*scenario.T, scenario.Args) error {
				ran = true
				return nil
			},
		}}, nil
	}))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.False(t, ran)
	assert.True(t, h.launcher.Browser.Released)

	idx, details, rerr := report.ReadReport(h.dir)
	require.NoError(t, rerr)
	assert.Empty(t, details)
	require.NotNil(t, idx.Setup)
	assert.Equal(t, "setup", idx.Setup.Type)
	assert.Equal(t, report.StatusFailed, idx.Status)
}

func TestExecuteEmptyBaseURL(t *testing.T) {
	h := newHarness(t)
	h.cfg.Board.BaseURL = ""
	built := false

	res, err := Execute(context.Background(), h.options(func(core.Driver) ([]scenario.Scenario, error) {
		built = true
		return nil, nil
	}))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.False(t, built)
	assert.Nil(t, h.launcher.Browser)

	idx, details, rerr := report.ReadReport(h.dir)
	require.NoError(t, rerr)
	assert.Empty(t, details)
	assert.Empty(t, idx.Scenarios)
	require.NotNil(t, idx.Setup)
	assert.Equal(t, report.StatusFailed, idx.Status)
}
