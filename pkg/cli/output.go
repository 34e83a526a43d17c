package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/executor"
	"github.com/devicelab-dev/board-runner/pkg/report"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Scenarios slower than this are flagged in the live output.
const slowThresholdMs = 10000

// colorsEnabled determines if ANSI colors should be used
var colorsEnabled = true

// out is where console output goes.
var out io.Writer = os.Stdout

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func printBanner(driver string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %sboard-runner %s%s %s(%s driver)%s\n",
		color(colorBold), Version, color(colorReset), color(colorGray), driver, color(colorReset))
	fmt.Fprintln(out, strings.Repeat("═", 60))
}

func printSession(info *core.PlatformInfo, baseURL string) {
	if info == nil {
		return
	}
	version := info.BrowserVersion
	if version == "" {
		version = "unknown version"
	}
	fmt.Fprintf(out, "  %s●%s %s %s (%dx%d, headless=%v)\n",
		color(colorCyan), color(colorReset), info.Engine, version,
		info.Viewport.Width, info.Viewport.Height, info.Headless)
	fmt.Fprintf(out, "  %s●%s %s\n", color(colorCyan), color(colorReset), baseURL)
}

// Live progress callbacks

func onScenarioStart(idx, total int, name string) {
	fmt.Fprintf(out, "\n  %s[%d/%d]%s %s%s%s\n",
		color(colorCyan), idx+1, total, color(colorReset),
		color(colorBold), name, color(colorReset))
}

func onScenarioEnd(_, _ int, r executor.ScenarioResult) {
	for _, cond := range r.UnmetPreconditions {
		fmt.Fprintf(out, "    %s⚠%s precondition not met: %s\n", color(colorYellow), color(colorReset), cond)
	}

	dur := formatDuration(r.Duration)
	switch r.Status {
	case report.StatusPassed:
		symbol, symbolColor, durColor := "✓", color(colorGreen), ""
		if r.Duration >= slowThresholdMs {
			symbol, symbolColor, durColor = "⚠", color(colorYellow), color(colorYellow)
		}
		fmt.Fprintf(out, "    %s%s%s passed %s(%s)%s\n",
			symbolColor, symbol, color(colorReset), durColor, dur, color(colorReset))
	case report.StatusSkipped:
		fmt.Fprintf(out, "    %s-%s skipped\n", color(colorCyan), color(colorReset))
	default:
		fmt.Fprintf(out, "    %s✗%s failed (%s)\n", color(colorRed), color(colorReset), dur)
		if r.Error != "" {
			fmt.Fprintf(out, "      %s╰─%s [%s] %s\n", color(colorGray), color(colorReset), r.Category, r.Error)
		}
	}
}

func statusCell(s report.Status) (string, string) {
	switch s {
	case report.StatusFailed:
		return "✗ FAIL", color(colorRed)
	case report.StatusSkipped:
		return "- SKIP", color(colorCyan)
	case report.StatusPassed:
		return "✓ PASS", color(colorGreen)
	}
	return strings.ToUpper(string(s)), color(colorGray)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func printSummary(result *executor.RunResult) {
	fmt.Fprintln(out)
	if result.Passed > 0 {
		fmt.Fprintf(out, "  %s%d scenarios passing%s (%s)\n", color(colorGreen), result.Passed, color(colorReset), formatDuration(result.Duration))
	}
	if result.Failed > 0 {
		fmt.Fprintf(out, "  %s%d scenarios failing%s\n", color(colorRed), result.Failed, color(colorReset))
	}
	if result.Skipped > 0 {
		fmt.Fprintf(out, "  %s%d scenarios skipped%s\n", color(colorCyan), result.Skipped, color(colorReset))
	}
	fmt.Fprintln(out)

	tableWidth := 92
	fmt.Fprintln(out, strings.Repeat("═", tableWidth))
	fmt.Fprintf(out, "  %-4s %-48s %6s %10s  %s\n", "#", "Scenario", "Status", "Duration", "Category")
	fmt.Fprintln(out, strings.Repeat("─", tableWidth))

	for _, sr := range result.Scenarios {
		status, statusColor := statusCell(sr.Status)
		category := ""
		if sr.Status == report.StatusFailed {
			category = sr.Category.String()
		}
		fmt.Fprintf(out, "  %-4d %-48s %s%6s%s %10s  %s\n",
			sr.Ordinal, truncate(sr.Name, 48), statusColor, status, color(colorReset),
			formatDuration(sr.Duration), category)
	}

	fmt.Fprintln(out, strings.Repeat("─", tableWidth))
	statusStr := fmt.Sprintf("%d/%d", result.Passed, result.Total)
	statusColor := color(colorGreen)
	if result.Failed > 0 {
		statusColor = color(colorRed)
	}
	fmt.Fprintf(out, "  %s%-53s%s %s%6s%s %10s\n",
		color(colorBold), "TOTAL", color(colorReset),
		statusColor, statusStr, color(colorReset),
		formatDuration(result.Duration))
	fmt.Fprintln(out, strings.Repeat("═", tableWidth))
}

// printIndexSummary prints the table for a report read back from disk.
func printIndexSummary(index *report.Index) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s%s%s  %s\n", color(colorBold), index.Title, color(colorReset), index.StartTime.Format("2006-01-02 15:04:05"))
	if index.Setup != nil {
		printSetupError(index.Setup.Type, index.Setup.Message)
		return
	}

	tableWidth := 92
	fmt.Fprintln(out, strings.Repeat("═", tableWidth))
	for _, s := range index.Scenarios {
		status, statusColor := statusCell(s.Status)
		dur := int64(0)
		if s.Duration != nil {
			dur = *s.Duration
		}
		fmt.Fprintf(out, "  %-4d %-48s %s%6s%s %10s\n",
			s.Ordinal, truncate(s.Name, 48), statusColor, status, color(colorReset), formatDuration(dur))
	}
	fmt.Fprintln(out, strings.Repeat("─", tableWidth))
	sum := index.Summary
	fmt.Fprintf(out, "  %stotal %d, passed %d, failed %d, skipped %d%s\n",
		color(colorBold), sum.Total, sum.Passed, sum.Failed, sum.Skipped, color(colorReset))
	fmt.Fprintln(out, strings.Repeat("═", tableWidth))
}

func printSetupFailure(err error) {
	printSetupError(core.CategoryOf(err).String(), err.Error())
}

func printSetupError(category, msg string) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s✗ Setup failed%s [%s]\n", color(colorRed), color(colorReset), category)
	fmt.Fprintf(out, "      %s╰─%s %s\n", color(colorGray), color(colorReset), msg)
	fmt.Fprintf(out, "  %sNo scenarios were run.%s\n", color(colorGray), color(colorReset))
}

func printReports(dir string, allure bool) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Reports:")
	fmt.Fprintf(out, "    HTML:   %s\n", filepath.Join(dir, "report.html"))
	fmt.Fprintf(out, "    JSON:   %s\n", filepath.Join(dir, "report.json"))
	if allure {
		fmt.Fprintf(out, "    Allure: %s\n", filepath.Join(dir, "allure-results"))
	}
	fmt.Fprintln(out)
}

// formatDuration formats milliseconds to a human-readable string.
// Shows milliseconds for values < 1s, seconds otherwise.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
