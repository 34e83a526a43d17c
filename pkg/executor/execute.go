package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
	"github.com/devicelab-dev/board-runner/pkg/report"
	"github.com/devicelab-dev/board-runner/pkg/scenario"
	"github.com/devicelab-dev/board-runner/pkg/session"
)

// BuildFunc builds the scenario plan on the live page of an open session.
type BuildFunc func(d core.Driver) ([]scenario.Scenario, error)

// Options wires one run together. Every dependency is passed explicitly.
type Options struct {
	Config   *config.Config
	Launcher core.Launcher
	Reporter *report.Reporter
	Build    BuildFunc
	Runner   RunnerConfig

	// OnSessionOpen is called once the page is ready, before the first scenario.
	OnSessionOpen func(info *core.PlatformInfo)
}

// Execute runs the whole lifecycle: open the session, run the plan, close the
// session and flush the reporter. The reporter is flushed on every path.
//
// A setup failure returns (nil, err) with err matching core.ErrSetupFailure
// and leaves zero scenario records on the report. Teardown and flush errors
// are returned alongside the run result.
func Execute(ctx context.Context, opts Options) (*RunResult, error) {
	rep := opts.Reporter

	sess, err := session.Open(ctx, opts.Config, opts.Launcher)
	if err != nil {
		return nil, setupFailed(rep, err)
	}

	info := sess.PlatformInfo()
	if info != nil {
		rep.SetBrowser(report.Browser{
			Engine:   info.Engine,
			Version:  info.BrowserVersion,
			Headless: info.Headless,
			Width:    info.Viewport.Width,
			Height:   info.Viewport.Height,
			BaseURL:  opts.Config.Board.BaseURL,
		})
	}
	if opts.OnSessionOpen != nil {
		opts.OnSessionOpen(info)
	}

	scenarios, err := opts.Build(sess.Driver)
	if err != nil {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("teardown after failed build: %v", cerr)
		}
		return nil, setupFailed(rep, core.ErrSetupFailure.WithMessage("failed to build scenarios").WithCause(err))
	}
	if err := scenario.ValidatePlan(scenarios); err != nil {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("teardown after invalid plan: %v", cerr)
		}
		return nil, setupFailed(rep, core.ErrSetupFailure.WithMessage("invalid scenario plan").WithCause(err))
	}

	runnerCfg := opts.Runner
	if runnerCfg.Screenshot == nil {
		runnerCfg.Screenshot = sess.Driver.Screenshot
	}
	result, runErr := New(rep, runnerCfg).Run(ctx, scenarios)

	closeErr := sess.Close()
	flushErr := rep.Flush()

	if runErr != nil {
		return nil, errors.Join(runErr, closeErr, flushErr)
	}
	if flushErr != nil {
		flushErr = fmt.Errorf("flush report: %w", flushErr)
	}
	return result, errors.Join(closeErr, flushErr)
}

func setupFailed(rep *report.Reporter, err error) error {
	rep.SetupFailed(err)
	if ferr := rep.Flush(); ferr != nil {
		return errors.Join(err, fmt.Errorf("flush report: %w", ferr))
	}
	return err
}
