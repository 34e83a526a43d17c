// Package session owns the browser lifecycle of one run: one engine, one
// browser, one context and one page shared by every scenario.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/devicelab-dev/board-runner/pkg/config"
	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/logger"
)

// Session is an open browser page ready for the first scenario.
type Session struct {
	Browser core.Browser
	Driver  core.Driver

	closed bool
}

// Open validates cfg, launches the engine, opens the page with the configured
// viewport and navigates to the board URL. Any failure releases what was
// already acquired and is returned as ErrSetupFailure.
func Open(ctx context.Context, cfg *config.Config, launcher core.Launcher) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.ErrSetupFailure.WithMessage("invalid configuration").WithCause(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, core.ErrSetupFailure.WithMessage("run cancelled before launch").WithCause(err)
	}

	opts := cfg.LaunchOptions()
	logger.Info("launching %s (headless=%t, slowMo=%s, timeout=%s)", opts.Engine, opts.Headless, opts.SlowMo, opts.Timeout)
	browser, err := launcher.Launch(opts)
	if err != nil {
		return nil, core.ErrSetupFailure.WithMessage(fmt.Sprintf("failed to launch %s", opts.Engine)).WithCause(err)
	}

	s := &Session{Browser: browser}
	vp := cfg.Viewport()
	driver, err := browser.NewPage(vp)
	if err != nil {
		return nil, s.abort(core.ErrSetupFailure.WithMessage("failed to open page").WithCause(err))
	}
	s.Driver = driver

	if err := ctx.Err(); err != nil {
		return nil, s.abort(core.ErrSetupFailure.WithMessage("run cancelled before navigation").WithCause(err))
	}
	if err := driver.Navigate(cfg.Board.BaseURL); err != nil {
		return nil, s.abort(core.ErrSetupFailure.WithMessage(fmt.Sprintf("failed to navigate to %s", cfg.Board.BaseURL)).WithCause(err))
	}

	logger.Info("session open: %s %dx%d at %s", opts.Engine, vp.Width, vp.Height, cfg.Board.BaseURL)
	return s, nil
}

// PlatformInfo returns the engine details of the open page.
func (s *Session) PlatformInfo() *core.PlatformInfo {
	if s.Driver == nil {
		return nil
	}
	return s.Driver.GetPlatformInfo()
}

// Close closes the browser and always releases the engine handle, even when
// closing fails. Errors are joined into ErrTeardownFailure. Close is idempotent.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.Browser.Close(); err != nil {
		logger.Warn("browser close failed: %v", err)
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := s.Browser.Release(); err != nil {
		logger.Warn("engine release failed: %v", err)
		errs = append(errs, fmt.Errorf("release engine: %w", err))
	}
	if len(errs) > 0 {
		return core.ErrTeardownFailure.WithCause(errors.Join(errs...))
	}
	logger.Info("session closed")
	return nil
}

// abort tears down a partially opened session and returns cause, annotated
// with any teardown error.
func (s *Session) abort(cause *core.ExecutionError) error {
	if err := s.Close(); err != nil {
		return cause.WithDetails(map[string]interface{}{"teardown": err.Error()})
	}
	return cause
}
