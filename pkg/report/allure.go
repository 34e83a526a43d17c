package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/devicelab-dev/board-runner/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Stage  string `json:"stage"`
	Start  int64  `json:"start"`
	Stop   int64  `json:"stop"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// GenerateAllure generates Allure-compatible report files in <reportDir>/allure-results/.
func GenerateAllure(reportDir string) error {
	index, scenarios, err := ReadReport(reportDir)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	allureDir := filepath.Join(reportDir, "allure-results")
	if err := os.MkdirAll(allureDir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	for i := range scenarios {
		result := buildAllureResult(&scenarios[i], index)

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal allure result for %s: %w", scenarios[i].ID, err)
		}

		resultPath := filepath.Join(allureDir, result.UUID+"-result.json")
		if err := os.WriteFile(resultPath, data, 0o644); err != nil {
			return fmt.Errorf("write allure result %s: %w", scenarios[i].ID, err)
		}
	}
	copyAllureAttachments(reportDir, allureDir, scenarios)

	if err := writeAllureCategories(allureDir); err != nil {
		return err
	}
	return writeAllureEnvironment(allureDir, index)
}

// buildAllureResult builds an AllureResult from a scenario detail. Each log
// line becomes a step so the Allure timeline mirrors the scenario log.
func buildAllureResult(s *ScenarioDetail, index *Index) AllureResult {
	startMs := s.StartTime.UnixMilli()
	stopMs := startMs
	if s.EndTime != nil {
		stopMs = s.EndTime.UnixMilli()
	}

	labels := []AllureLabel{
		{Name: "suite", Value: index.Title},
		{Name: "framework", Value: "board-runner"},
		{Name: "severity", Value: "normal"},
	}
	if index.Browser.Engine != "" {
		labels = append(labels, AllureLabel{Name: "tag", Value: index.Browser.Engine})
	}
	if index.System.Host != "" {
		labels = append(labels, AllureLabel{Name: "host", Value: index.System.Host})
	}

	var details AllureStatusDetails
	if s.Error != nil {
		details.Message = s.Error.Message
		details.Trace = s.Error.Type
	}

	steps := make([]AllureStep, 0, len(s.Logs))
	for i, l := range s.Logs {
		stop := stopMs
		if i+1 < len(s.Logs) {
			stop = s.Logs[i+1].Timestamp.UnixMilli()
		}
		steps = append(steps, AllureStep{
			Name:   l.Message,
			Status: allureStepStatus(l.Level),
			Stage:  "finished",
			Start:  l.Timestamp.UnixMilli(),
			Stop:   stop,
		})
	}

	attachments := make([]AllureAttachment, 0, len(s.Attachments))
	for _, a := range s.Attachments {
		attachments = append(attachments, AllureAttachment{
			Name:   a.Name,
			Source: allureSource(s.ID, a),
			Type:   a.Type,
		})
	}

	return AllureResult{
		UUID:          uuid.NewString(),
		HistoryID:     fnv32aHash(s.Name),
		FullName:      index.Title + ": " + s.Name,
		Name:          s.Name,
		Status:        mapAllureStatus(s.Status),
		Stage:         "finished",
		Start:         startMs,
		Stop:          stopMs,
		Labels:        labels,
		StatusDetails: details,
		Steps:         steps,
		Attachments:   attachments,
	}
}

// allureSource is the flat file name of an attachment inside allure-results/.
func allureSource(scenarioID string, a Attachment) string {
	return scenarioID + "-" + filepath.Base(a.Path)
}

// copyAllureAttachments copies attachment files from assets subdirs into allure-results/ flat.
func copyAllureAttachments(reportDir, allureDir string, scenarios []ScenarioDetail) {
	for _, s := range scenarios {
		for _, a := range s.Attachments {
			src := filepath.Join(reportDir, filepath.FromSlash(a.Path))
			copyFile(src, filepath.Join(allureDir, allureSource(s.ID, a)))
		}
	}
}

// copyFile copies a single file from src to dst. Failures are logged, not returned.
func copyFile(src, dst string) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		logger.Warn("failed to copy %s to %s: %v", src, dst, err)
	}
}

// mapAllureStatus maps report Status to Allure status string.
func mapAllureStatus(s Status) string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

func allureStepStatus(l Level) string {
	switch l {
	case LevelFail, LevelError:
		return "failed"
	default:
		return "passed"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}

// writeAllureCategories writes categories.json for failure categorization.
func writeAllureCategories(allureDir string) error {
	categories := []AllureCategory{
		{Name: "Element Not Found", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*element not found.*"},
		{Name: "Ambiguous Locator", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*resolved to \\d+ elements.*|.*strict mode violation.*"},
		{Name: "Timeout", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*timeout.*|.*timed out.*"},
		{Name: "Assertion Failed", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*not equal.*|.*expected.*|.*should.*"},
		{Name: "Precondition Not Satisfied", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*precondition.*"},
		{Name: "Navigation Error", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*navigate.*|.*net::err.*"},
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	path := filepath.Join(allureDir, "categories.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return nil
}

// writeAllureEnvironment writes environment.properties with browser and system metadata.
func writeAllureEnvironment(allureDir string, index *Index) error {
	var b strings.Builder
	b.WriteString("framework=board-runner\n")

	props := []struct{ key, value string }{
		{"browser.engine", index.Browser.Engine},
		{"browser.version", index.Browser.Version},
		{"browser.headless", fmt.Sprintf("%t", index.Browser.Headless)},
		{"target.url", index.Browser.BaseURL},
		{"environment", index.System.Environment},
		{"user", index.System.User},
		{"runner.version", index.Runner.Version},
		{"runner.driver", index.Runner.Driver},
	}
	for _, p := range props {
		if p.value != "" {
			fmt.Fprintf(&b, "%s=%s\n", p.key, p.value)
		}
	}

	path := filepath.Join(allureDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}
