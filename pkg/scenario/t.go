package scenario

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/devicelab-dev/board-runner/pkg/core"
	"github.com/devicelab-dev/board-runner/pkg/report"
)

// Sink receives the log lines of one execution. *report.Test satisfies it.
type Sink interface {
	Log(level report.Level, msg string)
}

// errFailNow unwinds a scenario body after FailNow.
var errFailNow = errors.New("scenario: FailNow")

// T is the per-execution handle passed to a scenario body. It satisfies
// testify's assert.TestingT and require.TestingT.
type T struct {
	name string
	sink Sink

	mu     sync.Mutex
	failed bool
	errs   []string
}

// NewT creates a handle for the named execution.
func NewT(name string, sink Sink) *T {
	return &T{name: name, sink: sink}
}

// Name returns the execution name.
func (t *T) Name() string {
	return t.name
}

// Logf records an info line.
func (t *T) Logf(format string, args ...interface{}) {
	t.log(report.LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf records a warning line.
func (t *T) Warnf(format string, args ...interface{}) {
	t.log(report.LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf records an error line and marks the execution failed.
func (t *T) Errorf(format string, args ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	t.mu.Lock()
	t.failed = true
	t.errs = append(t.errs, msg)
	t.mu.Unlock()
	t.log(report.LevelError, msg)
}

// FailNow marks the execution failed and stops the body.
func (t *T) FailNow() {
	t.mu.Lock()
	t.failed = true
	t.mu.Unlock()
	panic(errFailNow)
}

// Helper is a no-op; present for testify.
func (t *T) Helper() {}

// Failed reports whether the execution has failed.
func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Err returns an assertion error summarizing every Errorf call, or nil.
func (t *T) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.failed {
		return nil
	}
	msg := "assertion failed"
	if len(t.errs) > 0 {
		msg = strings.Join(t.errs, "; ")
	}
	return core.ErrAssertionFailed.WithMessage(msg)
}

func (t *T) log(level report.Level, msg string) {
	if t.sink != nil {
		t.sink.Log(level, msg)
	}
}

// Invoke runs the execution body on t. Panics are recovered and returned as
// errors; an assertion failure recorded on t is returned as ErrAssertionFailed.
func Invoke(t *T, e Execution) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if r == errFailNow {
				err = t.Err()
				return
			}
			err = core.NewExecutionError(core.ErrCategoryUnknown, "panic", fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := e.Run(t, e.Args); err != nil {
		return err
	}
	return t.Err()
}
