package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// HTMLConfig contains configuration for HTML report generation.
type HTMLConfig struct {
	OutputPath  string // Path to write the HTML file
	EmbedAssets bool   // Embed screenshots as base64 (makes file larger but portable)
	Title       string // Report title (default: index title)
	ReportDir   string // Directory containing report.json (needed for asset paths)
}

// GenerateHTML generates an HTML report from the report directory.
func GenerateHTML(reportDir string, cfg HTMLConfig) error {
	index, scenarios, err := ReadReport(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = index.Title
	}
	if cfg.Title == "" {
		cfg.Title = "Test Report"
	}
	if cfg.ReportDir == "" {
		cfg.ReportDir = reportDir
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(reportDir, "report.html")
	}

	html, err := renderHTML(buildHTMLData(index, scenarios, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData contains all data needed for the HTML template.
type HTMLData struct {
	Title         string
	GeneratedAt   string
	Index         *Index
	Scenarios     []ScenarioHTMLData
	TotalDuration string
	PassRate      float64
	StatusClass   string
}

// ScenarioHTMLData contains scenario data formatted for HTML.
type ScenarioHTMLData struct {
	ScenarioDetail
	StatusClass string
	DurationStr string
	Logs        []LogHTMLData
	Images      []ImageHTMLData
}

// LogHTMLData is one log line formatted for HTML.
type LogHTMLData struct {
	Time    string
	Level   Level
	Message string
}

// ImageHTMLData is an image attachment, either a relative path or a data URL.
type ImageHTMLData struct {
	Name string
	Src  template.URL
}

func buildHTMLData(index *Index, scenarios []ScenarioDetail, cfg HTMLConfig) HTMLData {
	data := make([]ScenarioHTMLData, len(scenarios))
	for i, s := range scenarios {
		logs := make([]LogHTMLData, len(s.Logs))
		for j, l := range s.Logs {
			logs[j] = LogHTMLData{Time: l.Timestamp.Format("15:04:05.000"), Level: l.Level, Message: l.Message}
		}

		var images []ImageHTMLData
		for _, a := range s.Attachments {
			if !strings.HasPrefix(a.Type, "image/") {
				continue
			}
			src := a.Path
			if cfg.EmbedAssets {
				src = loadAsBase64(filepath.Join(cfg.ReportDir, filepath.FromSlash(a.Path)))
			}
			images = append(images, ImageHTMLData{Name: a.Name, Src: template.URL(src)})
		}

		data[i] = ScenarioHTMLData{
			ScenarioDetail: s,
			StatusClass:    string(s.Status),
			DurationStr:    formatDuration(s.Duration),
			Logs:           logs,
			Images:         images,
		}
	}

	var passRate float64
	if index.Summary.Total > 0 {
		passRate = float64(index.Summary.Passed) / float64(index.Summary.Total) * 100
	}

	var totalDurationMs int64
	if index.EndTime != nil {
		totalDurationMs = index.EndTime.Sub(index.StartTime).Milliseconds()
	}

	return HTMLData{
		Title:         cfg.Title,
		GeneratedAt:   time.Now().Format("2006-01-02 15:04:05"),
		Index:         index,
		Scenarios:     data,
		TotalDuration: formatDuration(&totalDurationMs),
		PassRate:      passRate,
		StatusClass:   string(index.Status),
	}
}

func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	d := time.Duration(*ms) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", *ms)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

func loadAsBase64(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	mimeType := "image/png"
	if ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f9fafb;
            --bg-tertiary: #f3f4f6;
            --text-primary: #000000;
            --text-secondary: rgb(75, 85, 99);
            --text-muted: rgb(107, 114, 128);
            --border-color: #e5e7eb;
            --passed: #22c55e;
            --passed-bg: rgba(34, 197, 94, 0.1);
            --failed: #ef4444;
            --failed-bg: rgba(239, 68, 68, 0.08);
            --skipped: #eab308;
            --skipped-bg: rgba(234, 179, 8, 0.1);
            --running: #06b6d4;
            --pending: #6b7280;
            --accent: #06b6d4;
        }

        * { box-sizing: border-box; margin: 0; padding: 0; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            line-height: 1.5;
        }

        .header {
            background: var(--bg-secondary);
            border-bottom: 1px solid var(--border-color);
            padding: 16px 24px;
        }

        .header-title-main { font-size: 18px; font-weight: 600; }
        .header-title-sub { font-size: 12px; color: var(--text-secondary); }

        .dashboard {
            display: flex;
            gap: 16px;
            flex-wrap: wrap;
            margin-top: 16px;
        }

        .card {
            background: var(--bg-primary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 12px 16px;
            min-width: 120px;
        }

        .card-label { font-size: 12px; color: var(--text-muted); }
        .card-value { font-size: 20px; font-weight: 600; }
        .card-value.passed { color: var(--passed); }
        .card-value.failed { color: var(--failed); }
        .card-value.skipped { color: var(--skipped); }

        .info-table { border-collapse: collapse; font-size: 13px; }
        .info-table td { padding: 2px 12px 2px 0; }
        .info-table td:first-child { color: var(--text-muted); }

        .setup-failure {
            margin: 16px 24px;
            padding: 12px 16px;
            background: var(--failed-bg);
            border-left: 4px solid var(--failed);
            border-radius: 4px;
        }

        .scenarios { padding: 16px 24px; }

        details.scenario {
            border: 1px solid var(--border-color);
            border-radius: 8px;
            margin-bottom: 8px;
        }

        details.scenario.failed { background: var(--failed-bg); }

        details.scenario summary {
            display: flex;
            align-items: center;
            gap: 12px;
            padding: 10px 16px;
            cursor: pointer;
        }

        .status-dot { width: 10px; height: 10px; border-radius: 50%; flex-shrink: 0; }
        .status-dot.passed { background: var(--passed); }
        .status-dot.failed { background: var(--failed); }
        .status-dot.skipped { background: var(--skipped); }
        .status-dot.running { background: var(--running); }
        .status-dot.pending { background: var(--pending); }

        .scenario-name { flex: 1; font-weight: 500; }
        .scenario-duration { color: var(--text-muted); font-size: 13px; }

        .scenario-body { padding: 8px 16px 16px; }

        .warning { color: var(--skipped); font-size: 13px; margin-bottom: 8px; }

        .log-table { width: 100%; border-collapse: collapse; font-size: 13px; }
        .log-table td { padding: 4px 8px; border-top: 1px solid var(--border-color); vertical-align: top; }
        .log-time { color: var(--text-muted); white-space: nowrap; font-family: monospace; }
        .log-level { text-transform: uppercase; font-size: 11px; font-weight: 600; white-space: nowrap; }
        .log-level.pass { color: var(--passed); }
        .log-level.fail, .log-level.error { color: var(--failed); }
        .log-level.warn { color: var(--skipped); }
        .log-message { white-space: pre-wrap; word-break: break-word; }

        .screenshot { margin-top: 12px; }
        .screenshot img { max-width: 480px; border: 1px solid var(--border-color); border-radius: 4px; }
    </style>
</head>
<body>
    <div class="header">
        <div class="header-title-main">{{.Title}}</div>
        <div class="header-title-sub">Run {{.Index.RunID}} &middot; generated {{.GeneratedAt}} &middot; {{.TotalDuration}}</div>

        <div class="dashboard">
            <div class="card"><div class="card-label">Status</div><div class="card-value {{.StatusClass}}">{{.Index.Status}}</div></div>
            <div class="card"><div class="card-label">Total</div><div class="card-value">{{.Index.Summary.Total}}</div></div>
            <div class="card"><div class="card-label">Passed</div><div class="card-value passed">{{.Index.Summary.Passed}}</div></div>
            <div class="card"><div class="card-label">Failed</div><div class="card-value failed">{{.Index.Summary.Failed}}</div></div>
            <div class="card"><div class="card-label">Skipped</div><div class="card-value skipped">{{.Index.Summary.Skipped}}</div></div>
            <div class="card"><div class="card-label">Pass rate</div><div class="card-value">{{printf "%.0f" .PassRate}}%</div></div>
            <div class="card">
                <table class="info-table">
                    <tr><td>Environment</td><td>{{.Index.System.Environment}}</td></tr>
                    <tr><td>User</td><td>{{.Index.System.User}}</td></tr>
                    <tr><td>Host</td><td>{{.Index.System.Host}} ({{.Index.System.OS}})</td></tr>
                    <tr><td>Browser</td><td>{{.Index.Browser.Engine}} {{.Index.Browser.Version}}{{if .Index.Browser.Headless}} (headless){{end}}</td></tr>
                    <tr><td>Driver</td><td>{{.Index.Runner.Driver}}</td></tr>
                    {{if .Index.Browser.BaseURL}}<tr><td>Target</td><td>{{.Index.Browser.BaseURL}}</td></tr>{{end}}
                </table>
            </div>
        </div>
    </div>

    {{if .Index.Setup}}
    <div class="setup-failure">
        <strong>Setup failed ({{.Index.Setup.Type}}):</strong> {{.Index.Setup.Message}}
    </div>
    {{end}}

    <div class="scenarios">
        {{range .Scenarios}}
        <details class="scenario {{.StatusClass}}"{{if eq .StatusClass "failed"}} open{{end}}>
            <summary>
                <span class="status-dot {{.StatusClass}}"></span>
                <span class="scenario-name">{{.Ordinal}}. {{.Name}}</span>
                <span class="scenario-duration">{{.DurationStr}}</span>
            </summary>
            <div class="scenario-body">
                {{range .UnmetPreconditions}}<div class="warning">Precondition not satisfied: {{.}}</div>{{end}}
                <table class="log-table">
                    {{range .Logs}}
                    <tr>
                        <td class="log-time">{{.Time}}</td>
                        <td class="log-level {{.Level}}">{{.Level}}</td>
                        <td class="log-message">{{.Message}}</td>
                    </tr>
                    {{end}}
                </table>
                {{range .Images}}
                <div class="screenshot"><div>{{.Name}}</div><img src="{{.Src}}" alt="{{.Name}}"></div>
                {{end}}
            </div>
        </details>
        {{end}}
    </div>
</body>
</html>
`
