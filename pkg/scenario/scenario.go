// Package scenario defines ordered, stateful acceptance scenarios.
//
// A plan is a linear list of scenarios sharing one fixture. Each scenario
// declares the conditions it requires from earlier scenarios and the
// conditions it provides to later ones, so a failure cascade is visible in
// the report instead of hidden in call order.
package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/devicelab-dev/board-runner/pkg/core"
)

// Args holds the literal inputs of one case.
type Args map[string]string

// Get returns the value for key, or "" when absent.
func (a Args) Get(key string) string {
	return a[key]
}

// Func is a scenario body. Returning an error or failing an assertion on t
// fails the execution.
type Func func(t *T, args Args) error

// Case is one literal input set of a parameterized scenario.
type Case struct {
	Name     string
	Args     Args
	Requires []string
	Provides []string
}

// Scenario is a named step of the ordered plan.
//
// Name may contain {key} placeholders filled from the case Args, and {name}
// for the case name. A scenario without Cases runs once with empty Args.
type Scenario struct {
	Name     string
	Requires []string
	Provides []string
	Cases    []Case
	Run      Func
}

// Execution is one dispatchable unit: a scenario bound to one case.
type Execution struct {
	Ordinal  int // 1-based dispatch order
	Name     string
	Args     Args
	Requires []string
	Provides []string
	Run      Func
}

// Expand flattens scenarios into executions in declaration order.
func Expand(scenarios []Scenario) []Execution {
	var execs []Execution
	for _, s := range scenarios {
		cases := s.Cases
		if len(cases) == 0 {
			cases = []Case{{}}
		}
		for _, c := range cases {
			execs = append(execs, Execution{
				Ordinal:  len(execs) + 1,
				Name:     formatName(s.Name, c),
				Args:     c.Args,
				Requires: union(s.Requires, c.Requires),
				Provides: union(s.Provides, c.Provides),
				Run:      s.Run,
			})
		}
	}
	return execs
}

// ValidatePlan checks that every scenario has a body and that every required
// condition is provided by an earlier execution.
func ValidatePlan(scenarios []Scenario) error {
	for i, s := range scenarios {
		if s.Name == "" {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("scenario %d has no name", i+1))
		}
		if s.Run == nil {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("scenario %q has no body", s.Name))
		}
	}

	provided := make(map[string]bool)
	for _, e := range Expand(scenarios) {
		var missing []string
		for _, req := range e.Requires {
			if !provided[req] {
				missing = append(missing, req)
			}
		}
		if len(missing) > 0 {
			return core.ErrInvalidConfig.
				WithMessage(fmt.Sprintf("scenario %q requires %s, not provided by an earlier scenario",
					e.Name, strings.Join(missing, ", "))).
				WithDetails(map[string]interface{}{"scenario": e.Name, "missing": missing})
		}
		for _, p := range e.Provides {
			provided[p] = true
		}
	}
	return nil
}

func formatName(name string, c Case) string {
	if !strings.Contains(name, "{") {
		return name
	}
	pairs := []string{"{name}", c.Name}
	keys := make([]string, 0, len(c.Args))
	for k := range c.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", c.Args[k])
	}
	return strings.NewReplacer(pairs...).Replace(name)
}

func union(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
