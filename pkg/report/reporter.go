package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
)

// ErrOutcomeRecorded is returned when a record already has its outcome.
var ErrOutcomeRecorded = errors.New("report: outcome already recorded")

// Config configures a Reporter.
type Config struct {
	OutputDir   string
	Title       string
	Environment string
	User        string
	Browser     Browser
	Runner      RunnerInfo
	Allure      bool             // Also write allure-results/
	Now         func() time.Time // Clock, defaults to time.Now
}

// Reporter collects scenario records for one run and writes them on Flush.
// It is safe for concurrent use so progress readers may call Index while
// the runner records outcomes.
type Reporter struct {
	mu    sync.Mutex
	cfg   Config
	index Index
	tests []*Test
}

// Test is the record of one scenario execution.
type Test struct {
	r      *Reporter
	detail ScenarioDetail
	assets []asset
}

type asset struct {
	name string
	data []byte
}

// New creates a reporter. Nothing is written until Flush.
func New(cfg Config) *Reporter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Title == "" {
		cfg.Title = "Test Report"
	}
	host, _ := os.Hostname()
	now := cfg.Now()
	return &Reporter{
		cfg: cfg,
		index: Index{
			Version:     Version,
			RunID:       uuid.NewString(),
			Title:       cfg.Title,
			Status:      StatusRunning,
			StartTime:   now,
			LastUpdated: now,
			Browser:     cfg.Browser,
			System: SystemInfo{
				Environment: cfg.Environment,
				User:        cfg.User,
				Host:        host,
				OS:          runtime.GOOS + "/" + runtime.GOARCH,
			},
			Runner:    cfg.Runner,
			Scenarios: []ScenarioEntry{},
		},
	}
}

// SetBrowser records the browser the session launched.
func (r *Reporter) SetBrowser(b Browser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index.Browser = b
}

// SetupFailed records a fatal setup error. No scenario records are created for the run.
func (r *Reporter) SetupFailed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index.Setup = &Error{Type: core.CategoryOf(err).String(), Message: err.Error()}
	logger.Error("setup failed: %v", err)
}

// CreateTest creates a named record in dispatch order.
func (r *Reporter) CreateTest(name string) *Test {
	r.mu.Lock()
	defer r.mu.Unlock()

	ordinal := len(r.tests) + 1
	t := &Test{
		r: r,
		detail: ScenarioDetail{
			ID:        fmt.Sprintf("scenario-%03d", ordinal),
			Ordinal:   ordinal,
			Name:      name,
			Status:    StatusRunning,
			StartTime: r.cfg.Now(),
			Logs:      []LogEntry{},
		},
	}
	r.tests = append(r.tests, t)
	return t
}

// Index returns a snapshot of the run index.
func (r *Reporter) Index() Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Flush writes report.json, scenario details, attachments, report.html and,
// when enabled, allure-results. It may be called more than once.
func (r *Reporter) Flush() error {
	r.mu.Lock()
	now := r.cfg.Now()
	r.index.EndTime = &now
	index := r.snapshotLocked()
	r.index.Status = index.Status
	details := make([]ScenarioDetail, len(r.tests))
	assets := make([][]asset, len(r.tests))
	for i, t := range r.tests {
		details[i] = t.detail
		assets[i] = t.assets
	}
	r.mu.Unlock()

	dir := r.cfg.OutputDir
	if err := ensureDir(filepath.Join(dir, "scenarios")); err != nil {
		return err
	}
	for i, d := range details {
		for _, a := range assets[i] {
			assetDir := filepath.Join(dir, "assets", d.ID)
			if err := ensureDir(assetDir); err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(assetDir, a.name), a.data, 0o644); err != nil {
				return fmt.Errorf("write attachment %s: %w", a.name, err)
			}
		}
		if err := atomicWriteJSON(filepath.Join(dir, index.Scenarios[i].DataFile), d); err != nil {
			return fmt.Errorf("write %s: %w", d.ID, err)
		}
	}
	if err := atomicWriteJSON(filepath.Join(dir, "report.json"), index); err != nil {
		return fmt.Errorf("write report.json: %w", err)
	}

	if err := GenerateHTML(dir, HTMLConfig{Title: r.cfg.Title}); err != nil {
		return err
	}
	if r.cfg.Allure {
		if err := GenerateAllure(dir); err != nil {
			return err
		}
	}
	logger.Info("report written to %s (%d scenarios, status %s)", dir, len(details), index.Status)
	return nil
}

func (r *Reporter) snapshotLocked() Index {
	index := r.index
	index.LastUpdated = r.cfg.Now()
	index.Scenarios = make([]ScenarioEntry, len(r.tests))
	for i, t := range r.tests {
		d := t.detail
		entry := ScenarioEntry{
			Ordinal:  d.Ordinal,
			ID:       d.ID,
			Name:     d.Name,
			DataFile: filepath.ToSlash(filepath.Join("scenarios", d.ID+".json")),
			Status:   d.Status,
			EndTime:  d.EndTime,
			Duration: d.Duration,
		}
		start := d.StartTime
		entry.StartTime = &start
		if d.Error != nil {
			msg := d.Error.Message
			entry.Error = &msg
		}
		index.Scenarios[i] = entry
	}
	index.Summary = computeSummary(index.Scenarios)
	index.Status = computeRunStatus(index)
	return index
}

// computeSummary calculates summary from scenario statuses.
func computeSummary(entries []ScenarioEntry) Summary {
	var s Summary
	for _, e := range entries {
		s.Total++
		switch e.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusRunning:
			s.Running++
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// computeRunStatus determines overall run status.
func computeRunStatus(index Index) Status {
	if index.Setup != nil {
		return StatusFailed
	}
	s := index.Summary
	switch {
	case s.Failed > 0:
		return StatusFailed
	case s.Running > 0 || s.Pending > 0:
		if index.EndTime == nil {
			return StatusRunning
		}
		return StatusFailed
	case s.Total > 0 && s.Skipped == s.Total:
		return StatusSkipped
	default:
		return StatusPassed
	}
}

// Name returns the record name.
func (t *Test) Name() string {
	return t.detail.Name
}

// ID returns the record id (scenario-001).
func (t *Test) ID() string {
	return t.detail.ID
}

// Status returns the current status of the record.
func (t *Test) Status() Status {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	return t.detail.Status
}

// Log appends a message to the record.
func (t *Test) Log(level Level, msg string) {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.detail.Logs = append(t.detail.Logs, LogEntry{Timestamp: t.r.cfg.Now(), Level: level, Message: msg})
}

// SetUnmetPreconditions lists declared requirements whose provider did not pass.
func (t *Test) SetUnmetPreconditions(conds []string) {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.detail.UnmetPreconditions = append([]string(nil), conds...)
}

// Attach stores a file with the record, written under assets/<id>/ on Flush.
func (t *Test) Attach(name, mimeType string, data []byte) {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	t.assets = append(t.assets, asset{name: name, data: data})
	t.detail.Attachments = append(t.detail.Attachments, Attachment{
		Name: name,
		Path: filepath.ToSlash(filepath.Join("assets", t.detail.ID, name)),
		Type: mimeType,
	})
}

// Pass records a passed outcome.
func (t *Test) Pass() error {
	return t.finish(StatusPassed, LevelPass, "Test passed", nil)
}

// Fail records a failed outcome with a message.
func (t *Test) Fail(msg string) error {
	return t.finish(StatusFailed, LevelFail, msg, &Error{Type: core.ErrCategoryUnknown.String(), Message: msg})
}

// FailWithError records a failed outcome classified by the error's category.
func (t *Test) FailWithError(err error) error {
	return t.finish(StatusFailed, LevelFail, err.Error(), &Error{Type: core.CategoryOf(err).String(), Message: err.Error()})
}

// Skip records a skipped outcome.
func (t *Test) Skip(reason string) error {
	return t.finish(StatusSkipped, LevelWarn, reason, nil)
}

func (t *Test) finish(status Status, level Level, msg string, e *Error) error {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()

	if t.detail.Status.IsTerminal() {
		return ErrOutcomeRecorded
	}
	now := t.r.cfg.Now()
	duration := now.Sub(t.detail.StartTime).Milliseconds()
	t.detail.Status = status
	t.detail.EndTime = &now
	t.detail.Duration = &duration
	t.detail.Error = e
	t.detail.Logs = append(t.detail.Logs, LogEntry{Timestamp: now, Level: level, Message: msg})
	return nil
}
