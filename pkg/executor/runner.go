// Package executor runs the ordered scenario plan against one shared session
// and records every execution with the Outcome Reporter.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
	"github.com/devicelab-dev/board-runner/pkg/report"
	"github.com/devicelab-dev/board-runner/pkg/scenario"
)

// RunnerConfig configures the scenario runner.
type RunnerConfig struct {
	// Screenshot captures the page when an execution fails. Optional.
	Screenshot func() ([]byte, error)

	// Live progress callbacks
	OnScenarioStart func(idx, total int, name string)
	OnScenarioEnd   func(idx, total int, result ScenarioResult)
}

// RunResult contains the outcome of a run.
type RunResult struct {
	Status    report.Status
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	Duration  int64 // Total duration in milliseconds
	Scenarios []ScenarioResult
}

// ScenarioResult contains the outcome of one execution.
type ScenarioResult struct {
	Ordinal            int
	ID                 string
	Name               string
	Status             report.Status
	Error              string
	Category           core.ErrorCategory
	UnmetPreconditions []string
	Duration           int64 // milliseconds
}

// Runner executes scenarios strictly in order. It never retries and never
// skips an execution because an earlier one failed.
type Runner struct {
	config   RunnerConfig
	reporter *report.Reporter
}

// New creates a Runner that records into reporter.
func New(reporter *report.Reporter, cfg RunnerConfig) *Runner {
	return &Runner{config: cfg, reporter: reporter}
}

// Run validates the plan and executes it. The context is checked between
// executions; once cancelled, the remaining executions are recorded as skipped.
func (r *Runner) Run(ctx context.Context, scenarios []scenario.Scenario) (*RunResult, error) {
	if err := scenario.ValidatePlan(scenarios); err != nil {
		return nil, err
	}

	start := time.Now()
	execs := scenario.Expand(scenarios)
	results := make([]ScenarioResult, len(execs))

	// Condition -> whether every provider so far passed.
	conditions := make(map[string]bool)

	for i, e := range execs {
		if r.config.OnScenarioStart != nil {
			r.config.OnScenarioStart(i, len(execs), e.Name)
		}

		if ctx.Err() != nil {
			results[i] = r.skip(e)
		} else {
			results[i] = r.execute(e, conditions)
		}

		passed := results[i].Status == report.StatusPassed
		for _, p := range e.Provides {
			ok, seen := conditions[p]
			conditions[p] = passed && (ok || !seen)
		}

		if r.config.OnScenarioEnd != nil {
			r.config.OnScenarioEnd(i, len(execs), results[i])
		}
	}

	return buildRunResult(results, time.Since(start)), nil
}

// execute runs one execution and records its outcome.
func (r *Runner) execute(e scenario.Execution, conditions map[string]bool) ScenarioResult {
	start := time.Now()
	test := r.reporter.CreateTest(e.Name)
	t := scenario.NewT(e.Name, test)
	log := logger.WithField("scenario", e.Name).WithField("ordinal", e.Ordinal)

	var unmet []string
	for _, req := range e.Requires {
		if !conditions[req] {
			unmet = append(unmet, req)
			t.Warnf("precondition %q not satisfied: an earlier scenario providing it failed", req)
		}
	}
	if len(unmet) > 0 {
		test.SetUnmetPreconditions(unmet)
	}

	log.Info("started")
	err := scenario.Invoke(t, e)

	result := ScenarioResult{
		Ordinal:            e.Ordinal,
		ID:                 test.ID(),
		Name:               e.Name,
		UnmetPreconditions: unmet,
	}

	if err != nil {
		r.attachScreenshot(test)
		if ferr := test.FailWithError(err); ferr != nil {
			log.Warn(ferr)
		}
		result.Status = report.StatusFailed
		result.Error = err.Error()
		result.Category = core.CategoryOf(err)
		log.WithField("category", result.Category.String()).Errorf("failed: %v", err)
	} else {
		if perr := test.Pass(); perr != nil {
			log.Warn(perr)
		}
		result.Status = report.StatusPassed
		log.Infof("passed in %s", time.Since(start).Round(time.Millisecond))
	}

	result.Duration = time.Since(start).Milliseconds()
	return result
}

// skip records an execution that did not run because the run was cancelled.
func (r *Runner) skip(e scenario.Execution) ScenarioResult {
	test := r.reporter.CreateTest(e.Name)
	_ = test.Skip("run cancelled")
	logger.Warn("scenario %d skipped: %s", e.Ordinal, e.Name)
	return ScenarioResult{
		Ordinal: e.Ordinal,
		ID:      test.ID(),
		Name:    e.Name,
		Status:  report.StatusSkipped,
		Error:   "run cancelled",
	}
}

func (r *Runner) attachScreenshot(test *report.Test) {
	if r.config.Screenshot == nil {
		return
	}
	data, err := r.config.Screenshot()
	if err != nil {
		test.Log(report.LevelWarn, fmt.Sprintf("failure screenshot unavailable: %v", err))
		return
	}
	test.Attach("failure.png", "image/png", data)
}

// buildRunResult aggregates execution results.
func buildRunResult(results []ScenarioResult, elapsed time.Duration) *RunResult {
	rr := &RunResult{
		Total:     len(results),
		Duration:  elapsed.Milliseconds(),
		Scenarios: results,
	}
	for _, res := range results {
		switch res.Status {
		case report.StatusPassed:
			rr.Passed++
		case report.StatusFailed:
			rr.Failed++
		case report.StatusSkipped:
			rr.Skipped++
		}
	}

	switch {
	case rr.Failed > 0:
		rr.Status = report.StatusFailed
	case rr.Total > 0 && rr.Skipped == rr.Total:
		rr.Status = report.StatusSkipped
	default:
		rr.Status = report.StatusPassed
	}
	return rr
}
