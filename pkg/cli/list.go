package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/board-runner/pkg/scenario"
	"github.com/devicelab-dev/board-runner/pkg/suite"
)

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "Print the ordered scenario plan",
	Description: `List every execution in dispatch order with the conditions it
requires and provides. No browser is launched.

Examples:
  board-runner list
  board-runner --config qa.yaml list --json`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the plan as JSON",
		},
	},
	Action: listPlan,
}

// planEntry is one line of the listed plan.
type planEntry struct {
	Ordinal  int      `json:"ordinal"`
	Name     string   `json:"name"`
	Requires []string `json:"requires,omitempty"`
	Provides []string `json:"provides,omitempty"`
}

func listPlan(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	plan, err := suite.Plan(cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	entries := planEntries(scenario.Expand(plan))

	if c.Bool("json") {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintln(out)
	for _, e := range entries {
		fmt.Fprintf(out, "  %s%3d%s  %s\n", color(colorCyan), e.Ordinal, color(colorReset), e.Name)
		if len(e.Requires) > 0 {
			fmt.Fprintf(out, "       %srequires%s %s\n", color(colorGray), color(colorReset), strings.Join(e.Requires, ", "))
		}
		if len(e.Provides) > 0 {
			fmt.Fprintf(out, "       %sprovides%s %s\n", color(colorGray), color(colorReset), strings.Join(e.Provides, ", "))
		}
	}
	fmt.Fprintf(out, "\n  %d executions from %d scenarios\n\n", len(entries), len(plan))
	return nil
}

func planEntries(execs []scenario.Execution) []planEntry {
	entries := make([]planEntry, len(execs))
	for i, e := range execs {
		entries[i] = planEntry{
			Ordinal:  e.Ordinal,
			Name:     e.Name,
			Requires: e.Requires,
			Provides: e.Provides,
		}
	}
	return entries
}
