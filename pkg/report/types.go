// Package report records scenario outcomes and writes them to disk.
//
// Layout of a flushed report directory:
//   - report.json: run index (status, browser, system info, summary, one entry per scenario)
//   - scenarios/scenario-XXX.json: per-scenario detail with its ordered log
//   - assets/scenario-XXX/: attachments such as failure screenshots
//   - report.html: self-contained HTML rendering of the above
//   - allure-results/: optional Allure results
package report

import "time"

// Version is the report schema version.
const Version = "1.0.0"

// Status represents the execution status.
type Status string

// Status values.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// IsTerminal returns true if the status is a final state.
func (s Status) IsTerminal() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusSkipped
}

// Level is the severity of a scenario log entry.
type Level string

// Level values.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelPass  Level = "pass"
	LevelFail  Level = "fail"
)

// ============================================================================
// INDEX (report.json)
// ============================================================================

// Index is the main report file.
type Index struct {
	Version     string          `json:"version"`
	RunID       string          `json:"runId"`
	Title       string          `json:"title"`
	Status      Status          `json:"status"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
	Browser     Browser         `json:"browser"`
	System      SystemInfo      `json:"system"`
	Runner      RunnerInfo      `json:"runner"`
	Setup       *Error          `json:"setup,omitempty"` // Set when the run aborted before any scenario
	Summary     Summary         `json:"summary"`
	Scenarios   []ScenarioEntry `json:"scenarios"`
}

// Browser describes the engine the run used.
type Browser struct {
	Engine   string `json:"engine"`
	Version  string `json:"version,omitempty"`
	Headless bool   `json:"headless"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	BaseURL  string `json:"baseUrl,omitempty"`
}

// SystemInfo is free-form run metadata shown in reports.
type SystemInfo struct {
	Environment string `json:"environment,omitempty"`
	User        string `json:"user,omitempty"`
	Host        string `json:"host,omitempty"`
	OS          string `json:"os,omitempty"`
}

// RunnerInfo contains board-runner information.
type RunnerInfo struct {
	Version string `json:"version"`
	Driver  string `json:"driver"` // playwright, cdp, mock
}

// Summary contains aggregated counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Running int `json:"running"`
	Pending int `json:"pending"`
}

// ScenarioEntry is the index entry for one scenario record.
type ScenarioEntry struct {
	Ordinal   int        `json:"ordinal"`  // 1-based dispatch order
	ID        string     `json:"id"`       // scenario-001
	Name      string     `json:"name"`     // Display name
	DataFile  string     `json:"dataFile"` // Path to scenario detail JSON
	Status    Status     `json:"status"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Duration  *int64     `json:"duration,omitempty"` // milliseconds
	Error     *string    `json:"error,omitempty"`
}

// ============================================================================
// SCENARIO DETAIL (scenarios/scenario-XXX.json)
// ============================================================================

// ScenarioDetail contains the full record of one scenario.
type ScenarioDetail struct {
	ID                 string       `json:"id"`
	Ordinal            int          `json:"ordinal"`
	Name               string       `json:"name"`
	Status             Status       `json:"status"`
	StartTime          time.Time    `json:"startTime"`
	EndTime            *time.Time   `json:"endTime,omitempty"`
	Duration           *int64       `json:"duration,omitempty"` // milliseconds
	UnmetPreconditions []string     `json:"unmetPreconditions,omitempty"`
	Error              *Error       `json:"error,omitempty"`
	Logs               []LogEntry   `json:"logs"`
	Attachments        []Attachment `json:"attachments,omitempty"`
}

// LogEntry is one message logged against a scenario.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

// Error contains error details.
type Error struct {
	Type    string `json:"type"` // setup, element, assertion, timeout, teardown, config, unknown
	Message string `json:"message"`
}

// Attachment is a file stored under the scenario's assets directory.
type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"` // relative to the report directory
	Type string `json:"type"` // MIME type
}
