package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/board-runner/pkg/scenario"
	"github.com/devicelab-dev/board-runner/pkg/suite"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Check configuration and the scenario plan without launching a browser",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		var failed bool
		check := func(what string, err error) {
			if err != nil {
				failed = true
				fmt.Fprintf(out, "  %s✗%s %s: %v\n", color(colorRed), color(colorReset), what, err)
				return
			}
			fmt.Fprintf(out, "  %s✓%s %s\n", color(colorGreen), color(colorReset), what)
		}

		fmt.Fprintln(out)
		check("configuration", cfg.Validate())

		plan, err := suite.Plan(cfg)
		check("scenario plan", err)
		for _, w := range suite.FromConfig(cfg.Data).Warnings() {
			fmt.Fprintf(out, "  %s⚠%s %s\n", color(colorYellow), color(colorReset), w)
		}
		if err == nil {
			fmt.Fprintf(out, "    %d executions, engine %s, %s\n",
				len(scenario.Expand(plan)), cfg.Browser.Engine, cfg.Board.BaseURL)
		}
		fmt.Fprintln(out)

		if failed {
			return cli.Exit("", 1)
		}
		return nil
	},
}
