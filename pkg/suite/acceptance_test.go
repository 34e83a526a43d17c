//go:build acceptance

package suite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/driver/playwright"
	"github.com/devicelab-dev/board-runner/pkg/executor"
	"github.com/devicelab-dev/board-runner/pkg/report"
)

// TestAcceptance runs the suite against a real board in a real browser.
//
//	BOARD_EMAIL=... BOARD_PASSWORD=... go test -tags acceptance ./pkg/suite -run TestAcceptance
//
// BOARD_BASE_URL and BROWSER_ENGINE select the app and engine;
// BOARD_RUNNER_CONFIG points at a config.yaml with data overrides.
func TestAcceptance(t *testing.T) {
	cfg := config.Default()
	if path := os.Getenv("BOARD_RUNNER_CONFIG"); path != "" {
		var err error
		cfg, err = config.Load(path)
		require.NoError(t, err)
	} else {
		require.NoError(t, cfg.ApplyEnv())
	}
	if cfg.Board.Email == "" || cfg.Board.Password == "" {
		t.Skipf("%s and %s are required", config.EnvEmail, config.EnvPassword)
	}
	cfg.Report.OutputDir = filepath.Join(t.TempDir(), "report")

	launcher := playwright.NewLauncher(config.GetDriversDir("playwright"))
	launcher.InstallBrowsers = os.Getenv("PLAYWRIGHT_INSTALL") != ""

	rep := report.New(report.Config{
		OutputDir: cfg.Report.OutputDir,
		Title:     cfg.Report.Title,
		Runner:    report.RunnerInfo{Version: "acceptance", Driver: "playwright"},
	})
	res, err := executor.Execute(context.Background(), executor.Options{
		Config:   cfg,
		Launcher: launcher,
		Reporter: rep,
		Build:    Build(cfg),
	})
	assert.NoError(t, err)
	t.Logf("report written to %s", cfg.Report.OutputDir)
	if res == nil {
		t.FailNow()
	}

	for _, s := range res.Scenarios {
		s := s
		t.Run(s.ID, func(t *testing.T) {
			assert.Equal(t, report.StatusPassed, s.Status, "%s [%s]: %s", s.Name, s.Category, s.Error)
			assert.Empty(t, s.UnmetPreconditions, s.Name)
		})
	}
}
