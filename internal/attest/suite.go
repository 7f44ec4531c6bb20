package attest

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	red  = color.New(color.FgRed).SprintFunc()
	pass = color.New(color.FgGreen).Sprint("✓")
	fail = red("✗")
	bold = color.New(color.Bold).SprintFunc()
)

// TestFunc is one named check in a Suite.
type TestFunc struct {
	Name string
	Fn   func(*Do)
}

// Suite is an ordered list of checks sharing one Do and an optional setup
// step. A Suite stops at its first failure.
type Suite struct {
	config *Config
	setup  func(*Do)
	tests  []TestFunc
}

// New returns an empty Suite.
func New() *Suite {
	return &Suite{}
}

// WithConfig sets the harness configuration, filling unset fields with defaults.
func (s *Suite) WithConfig(config *Config) *Suite {
	s.config = config.merge()
	return s
}

// Setup registers fn to run before the first test. A later call replaces it.
func (s *Suite) Setup(fn func(*Do)) *Suite {
	s.setup = fn
	return s
}

// Test appends a named check.
func (s *Suite) Test(name string, fn func(*Do)) *Suite {
	s.tests = append(s.tests, TestFunc{Name: name, Fn: fn})
	return s
}

// Tests lists the check names in run order.
func (s *Suite) Tests() []string {
	names := make([]string, len(s.tests))
	for i, test := range s.tests {
		names[i] = test.Name
	}

	return names
}

// Run executes setup and then each check, printing a line per check to the
// configured output. It reports whether everything passed.
func (s *Suite) Run(ctx context.Context) bool {
	config := s.config
	if config == nil {
		config = DefaultConfig()
	}
	out := config.Output

	do := newDo(ctx, config)
	defer do.Done()

	ok := s.setup == nil || runStep(out, "SETUP", s.setup, do, false)
	for _, test := range s.tests {
		if !ok {
			break
		}
		if ctx.Err() != nil {
			return false
		}

		ok = runStep(out, test.Name, test.Fn, do, true)
	}

	if ok {
		fmt.Fprintf(out, "\n%s %s\n", bold("PASSED"), pass)
	} else {
		fmt.Fprintf(out, "\n%s %s\n", bold("FAILED"), fail)
	}

	return ok
}

// runStep calls fn, turning a panic into a failure line followed by the
// panic message. Passing steps are only printed when announce is set.
func runStep(out io.Writer, name string, fn func(*Do), do *Do, announce bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			fmt.Fprintf(out, "%s %s\n\n%v\n", fail, name, r)
		}
	}()

	fn(do)
	if announce {
		fmt.Fprintf(out, "%s %s\n", pass, name)
	}

	return true
}
