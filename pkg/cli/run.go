package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/driver/cdp"
	"github.com/devicelab-dev/board-runner/pkg/driver/mock"
	"github.com/devicelab-dev/board-runner/pkg/driver/playwright"
	"github.com/devicelab-dev/board-runner/pkg/executor"
	"github.com/devicelab-dev/board-runner/pkg/logger"
	"github.com/devicelab-dev/board-runner/pkg/report"
	"github.com/devicelab-dev/board-runner/pkg/suite"
)

// Exit codes of the run command.
const (
	exitScenarioFailed = 1
	exitSetupFailed    = 2
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "Run the kanban suite against the configured board",
	Description: `Open one browser session, run every scenario in order and write the report.

Reports are generated in the output directory:
  - Default: <report.outputDir>/<timestamp>/
  - With --output: <output>/<timestamp>/
  - With --output and --flatten: <output>/ (no timestamp subfolder)

Exit status is 1 when any scenario failed and 2 when setup failed.

Examples:
  board-runner run
  board-runner run --engine webkit --headless=false
  BOARD_EMAIL=me@example.com BOARD_PASSWORD=secret board-runner run
  board-runner --driver cdp run --output ./reports --flatten`,
	Flags: []cli.Flag{
		// Browser
		&cli.StringFlag{
			Name:  "engine",
			Usage: "Browser engine (chromium, firefox, webkit)",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a browser window",
		},
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Base URL of the board app",
		},

		// Output directory
		&cli.StringFlag{
			Name:  "output",
			Usage: "Output directory for reports (default: report.outputDir)",
		},
		&cli.BoolFlag{
			Name:  "flatten",
			Usage: "Don't create timestamp subfolder (requires --output)",
		},
		&cli.BoolFlag{
			Name:  "allure",
			Usage: "Also write allure-results",
		},

		// Driver settings
		&cli.BoolFlag{
			Name:  "install-browsers",
			Usage: "Download the Playwright driver and browser before launching",
		},
		&cli.StringFlag{
			Name:    "chrome-path",
			Usage:   "Chrome binary for the cdp driver",
			EnvVars: []string{"CHROME_PATH"},
		},
	},
	Action: runSuite,
}

// RunConfig holds the resolved settings of one run.
type RunConfig struct {
	Config          *config.Config
	Driver          string
	OutputDir       string
	Verbose         bool
	InstallBrowsers bool
	ChromePath      string
}

func runSuite(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitSetupFailed)
	}
	applyRunFlags(c, cfg)

	outputDir, err := resolveOutputDir(c.String("output"), cfg.Report.OutputDir, c.Bool("flatten"), time.Now())
	if err != nil {
		return cli.Exit(err.Error(), exitSetupFailed)
	}

	return executeRun(&RunConfig{
		Config:          cfg,
		Driver:          c.String("driver"),
		OutputDir:       outputDir,
		Verbose:         c.Bool("verbose"),
		InstallBrowsers: c.Bool("install-browsers"),
		ChromePath:      c.String("chrome-path"),
	})
}

// applyRunFlags overlays explicitly set run flags on the loaded config.
func applyRunFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("engine") {
		cfg.Browser.Engine = c.String("engine")
	}
	if c.IsSet("headless") {
		cfg.Browser.Headless = c.Bool("headless")
	}
	if c.IsSet("base-url") {
		cfg.Board.BaseURL = c.String("base-url")
	}
	if c.IsSet("allure") {
		cfg.Report.Allure = c.Bool("allure")
	}
	cfg.Normalize()
}

// resolveOutputDir determines the output directory based on flags.
// - No --output: <defaultDir>/<timestamp>/
// - --output given: <output>/<timestamp>/
// - --output + --flatten: <output>/ (error if --output not given)
func resolveOutputDir(output, defaultDir string, flatten bool, now time.Time) (string, error) {
	if flatten && output == "" {
		return "", fmt.Errorf("--flatten requires --output to be specified")
	}

	baseDir := output
	if baseDir == "" {
		baseDir = defaultDir
	}
	if baseDir == "" {
		baseDir = "./reports"
	}

	if flatten {
		return filepath.Clean(baseDir), nil
	}
	return filepath.Join(baseDir, now.Format("2006-01-02_15-04-05")), nil
}

// newLauncher creates the core.Launcher for the selected driver.
func newLauncher(rc *RunConfig) (core.Launcher, error) {
	switch rc.Driver {
	case driverPlaywright, "":
		l := playwright.NewLauncher(config.GetDriversDir(driverPlaywright))
		l.InstallBrowsers = rc.InstallBrowsers
		l.Verbose = rc.Verbose
		return l, nil
	case driverCDP:
		return cdp.NewLauncher(rc.ChromePath), nil
	case driverMock:
		// In-memory board app, useful to check a configuration end to end.
		board := rc.Config.Board
		return mock.NewLauncher(mock.NewApp(board.BaseURL, board.Email, board.Password)), nil
	}
	return nil, fmt.Errorf("unknown driver %q (use %s, %s or %s)", rc.Driver, driverPlaywright, driverCDP, driverMock)
}

func executeRun(rc *RunConfig) error {
	cfg := rc.Config

	// 1. Create output directory
	if err := os.MkdirAll(rc.OutputDir, 0o755); err != nil {
		return cli.Exit(fmt.Sprintf("failed to create output directory: %v", err), exitSetupFailed)
	}

	// 2. Initialize logging
	if err := logger.Init(filepath.Join(rc.OutputDir, "board-runner.log")); err != nil {
		fmt.Fprintf(out, "Warning: Failed to initialize logger: %v\n", err)
	}
	defer logger.Close()
	logger.SetVerbose(rc.Verbose)

	logger.Info("=== Run started ===")
	logger.Info("Output directory: %s", rc.OutputDir)
	logger.Info("Driver: %s, engine: %s, base URL: %s", rc.Driver, cfg.Browser.Engine, cfg.Board.BaseURL)

	launcher, err := newLauncher(rc)
	if err != nil {
		return cli.Exit(err.Error(), exitSetupFailed)
	}

	rep := report.New(report.Config{
		OutputDir:   rc.OutputDir,
		Title:       cfg.Report.Title,
		Environment: cfg.Report.Environment,
		User:        cfg.Report.User,
		Allure:      cfg.Report.Allure,
		Runner:      report.RunnerInfo{Version: Version, Driver: rc.Driver},
	})

	// Ctrl+C cancels the run; remaining scenarios are recorded as skipped.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner(rc.Driver)
	for _, w := range suite.FromConfig(cfg.Data).Warnings() {
		fmt.Fprintf(out, "  %s⚠%s %s\n", color(colorYellow), color(colorReset), w)
	}

	result, err := executor.Execute(ctx, executor.Options{
		Config:   cfg,
		Launcher: launcher,
		Reporter: rep,
		Build:    suite.Build(cfg),
		Runner: executor.RunnerConfig{
			OnScenarioStart: onScenarioStart,
			OnScenarioEnd:   onScenarioEnd,
		},
		OnSessionOpen: func(info *core.PlatformInfo) {
			printSession(info, cfg.Board.BaseURL)
		},
	})

	if result == nil {
		if err == nil {
			err = core.ErrSetupFailure.WithMessage("run produced no result")
		}
		logger.Error("Setup failed: %v", err)
		printSetupFailure(err)
		printReports(rc.OutputDir, cfg.Report.Allure)
		return cli.Exit("", exitSetupFailed)
	}
	if err != nil {
		logger.Warn("Run finished with errors: %v", err)
		fmt.Fprintf(out, "  %s⚠%s %v\n", color(colorYellow), color(colorReset), err)
	}

	logger.Info("Run completed: %d passed, %d failed, %d skipped", result.Passed, result.Failed, result.Skipped)
	printSummary(result)
	printReports(rc.OutputDir, cfg.Report.Allure)

	if result.Status != report.StatusPassed {
		return cli.Exit("", exitScenarioFailed)
	}
	return nil
}
