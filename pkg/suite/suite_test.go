package suite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/driver/mock"
	"github.com/devicelab-dev/board-runner/pkg/executor"
	"github.com/devicelab-dev/board-runner/pkg/report"
	"github.com/devicelab-dev/board-runner/pkg/scenario"
)

const (
	baseURL  = "https://trello.test"
	email    = "bob@example.com"
	password = "pool-secret"
)

var today = time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Board = config.Board{BaseURL: baseURL, Email: email, Password: password}
	cfg.Report.OutputDir = t.TempDir()
	return cfg
}

// runSuite runs the full suite against the in-memory board.
func runSuite(t *testing.T, cfg *config.Config, app *mock.App) (*executor.RunResult, *report.Reporter, error) {
	t.Helper()
	app.Now = func() time.Time { return today }
	rep := report.New(report.Config{OutputDir: cfg.Report.OutputDir, Title: cfg.Report.Title})
	res, err := executor.Execute(context.Background(), executor.Options{
		Config:   cfg,
		Launcher: mock.NewLauncher(app),
		Reporter: rep,
		Build: func(d core.Driver) ([]scenario.Scenario, error) {
			data := FromConfig(cfg.Data)
			if err := data.Validate(); err != nil {
				return nil, err
			}
			fx := NewFixture(d, cfg)
			fx.Now = func() time.Time { return today }
			return Scenarios(fx, data), nil
		},
	})
	return res, rep, err
}

func TestSuitePassesOnBoard(t *testing.T) {
	cfg := testConfig(t)
	app := mock.NewApp(baseURL, email, password)

	res, _, err := runSuite(t, cfg, app)
	require.NoError(t, err)

	names := make([]string, len(res.Scenarios))
	for i, s := range res.Scenarios {
		names[i] = s.Name
		assert.Equal(t, report.StatusPassed, s.Status, "%s: %s", s.Name, s.Error)
		assert.Empty(t, s.UnmetPreconditions, s.Name)
	}
	assert.Equal(t, []string{
		"Login with Valid User Credentials",
		"Create Trello Board",
		"Add List on Board: Prospects",
		"Add List on Board: In Progress",
		"Add Card 'Public Pool Amsterdam Renovation' to List 'Prospects'",
		"Add Card 'New Public Pool - Delft' to List 'In Progress'",
		"Add date to the card",
		"Drag a card between lists",
		"Move a selected card within a list",
		"Archive a card in a list",
	}, names)
	assert.Equal(t, report.StatusPassed, res.Status)

	board := app.CurrentBoard()
	require.NotNil(t, board)
	assert.Equal(t, "Bob's Pool Maintenance", board.Name)
	assert.Empty(t, board.List("Prospects").Names())
	assert.Equal(t, []string{"Public Pool Amsterdam Renovation"}, board.List("In Progress").Names())
	require.Len(t, app.Archived, 1)
	assert.Equal(t, "New Public Pool - Delft", app.Archived[0].Name)

	idx, details, err := report.ReadReport(cfg.Report.OutputDir)
	require.NoError(t, err)
	assert.Equal(t, 10, idx.Summary.Passed)
	assert.Len(t, details, 10)
}

func TestSuiteWithConfiguredData(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data = config.Data{
		BoardName: "Sprint 12",
		Lists:     []string{"Todo", "Doing", "Done"},
		Cards: []config.CardData{
			{List: "Todo", Name: "Write docs"},
			{List: "Doing", Name: "Fix login"},
			{List: "Doing", Name: "Review PR"},
		},
		DueDateCard: "Fix login",
		DragCard:    "Write docs",
		DragTo:      "Doing",
		ArchiveCard: "Review PR",
	}
	app := mock.NewApp(baseURL, email, password)

	res, _, err := runSuite(t, cfg, app)
	require.NoError(t, err)
	for _, s := range res.Scenarios {
		assert.Equal(t, report.StatusPassed, s.Status, "%s: %s", s.Name, s.Error)
	}
	assert.Equal(t, 12, res.Total)
	assert.Equal(t, []string{"Write docs", "Fix login"}, app.CurrentBoard().List("Doing").Names())
}

func TestSuiteLoginFailureCascades(t *testing.T) {
	cfg := testConfig(t)
	app := mock.NewApp(baseURL, email, "another-password")

	res, _, err := runSuite(t, cfg, app)
	require.NoError(t, err)
	require.Len(t, res.Scenarios, 10)

	assert.Equal(t, report.StatusFailed, res.Status)
	login := res.Scenarios[0]
	assert.Equal(t, report.StatusFailed, login.Status)
	assert.Empty(t, login.UnmetPreconditions)

	board := res.Scenarios[1]
	assert.Equal(t, report.StatusFailed, board.Status, "dependent scenario still runs and fails")
	assert.Equal(t, []string{"logged-in"}, board.UnmetPreconditions)
	assert.Equal(t, core.ErrCategoryElement, board.Category)

	for _, s := range res.Scenarios[1:] {
		assert.NotEmpty(t, s.UnmetPreconditions, s.Name)
	}
}

func TestSuiteSetupFailure(t *testing.T) {
	cfg := testConfig(t)
	cfg.Board.Email = ""
	app := mock.NewApp(baseURL, email, password)

	res, rep, err := runSuite(t, cfg, app)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, core.ErrSetupFailure))
	assert.Empty(t, rep.Index().Scenarios)
}

func TestPlan(t *testing.T) {
	plan, err := Plan(testConfig(t))
	require.NoError(t, err)
	require.Len(t, plan, 8)

	execs := scenario.Expand(plan)
	assert.Len(t, execs, 10)
	assert.Equal(t, "Archive a card in a list", execs[9].Name)

	cfg := testConfig(t)
	cfg.Data.DragTo = "Nowhere"
	_, err = Plan(cfg)
	assert.True(t, errors.Is(err, core.ErrInvalidConfig))
}
