// Package cli provides the command-line interface for board-runner.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/board-runner/pkg/config"
)

// Version is set at build time.
var Version = "dev"

// Driver names accepted by --driver.
const (
	driverPlaywright = "playwright"
	driverCDP        = "cdp"
	driverMock       = "mock"
)

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to config.yaml (default: ./config.yaml, then $BOARD_RUNNER_HOME/config.yaml)",
		EnvVars: []string{"BOARD_RUNNER_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "driver",
		Aliases: []string{"d"},
		Usage:   "Automation driver (playwright, cdp, mock)",
		Value:   driverPlaywright,
		EnvVars: []string{"BOARD_RUNNER_DRIVER"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"BOARD_RUNNER_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "board-runner",
		Usage:   "End-to-end acceptance suite for kanban board web apps",
		Version: Version,
		Description: `board-runner drives a real browser through an ordered kanban scenario:
log in, create a board, add lists and cards, set a due date, drag a card
and archive one. Every scenario produces a record in the report.

Examples:
  board-runner run
  board-runner --config qa.yaml run --engine firefox --headless=false
  board-runner list
  board-runner report --allure ./reports/2024-01-02_15-04-05`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				colorsEnabled = false
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			listCommand,
			validateCommand,
			reportCommand,
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or the first config.yaml found in the working
// directory and then the board-runner home. Without a file, defaults plus
// environment are used.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}

	for _, dir := range []string{".", config.GetHome()} {
		for _, name := range []string{"config.yaml", "config.yml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return config.LoadFromDir(dir)
			}
		}
	}
	return config.LoadFromDir(config.GetHome())
}
