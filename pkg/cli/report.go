package cli

import (
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/board-runner/pkg/report"
)

var reportCommand = &cli.Command{
	Name:      "report",
	Usage:     "Regenerate report.html (and Allure results) from a report directory",
	ArgsUsage: "<report-dir>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "allure",
			Usage: "Also write allure-results",
		},
		&cli.BoolFlag{
			Name:  "embed",
			Usage: "Embed screenshots in report.html so it can be shared as one file",
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: "Report title (default: the title recorded in report.json)",
		},
	},
	Action: regenerateReport,
}

func regenerateReport(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one report directory is required", 1)
	}
	dir := c.Args().First()

	index, _, err := report.ReadReport(dir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to read report: %v", err), 1)
	}

	htmlPath := filepath.Join(dir, "report.html")
	if err := report.GenerateHTML(dir, report.HTMLConfig{
		OutputPath:  htmlPath,
		EmbedAssets: c.Bool("embed"),
		Title:       c.String("title"),
	}); err != nil {
		return cli.Exit(fmt.Sprintf("failed to generate HTML report: %v", err), 1)
	}
	if c.Bool("allure") {
		if err := report.GenerateAllure(dir); err != nil {
			return cli.Exit(fmt.Sprintf("failed to generate Allure results: %v", err), 1)
		}
	}

	printIndexSummary(index)
	printReports(dir, c.Bool("allure"))
	return nil
}
