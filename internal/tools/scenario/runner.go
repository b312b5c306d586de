// Package scenario runs Lua match scripts against the match domain.
//
// A script scripts rounds directly into a ledger, lets policies play, and
// checks what the detector, the policies and the ledger report along the way.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/louisbranch/roshambo/internal/services/match/domain/ledger"
)

// Config controls scenario execution.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Assertions: AssertionStrict,
	}
}

// Runner executes scenarios.
type Runner struct {
	assertions Assertions
	logger     *log.Logger
	verbose    bool
}

// NewRunner prepares a scenario runner.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Runner{
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
	}
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return NewRunner(cfg).RunScenario(ctx, scenario)
}

// Failures returns the unmet expectations seen so far in log-only mode.
func (r *Runner) Failures() int {
	return r.assertions.Failures()
}

// RunScenario executes the scenario steps in order against a fresh ledger.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{capacity: ledger.DefaultCapacity}

	for index, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		if err := r.runStep(ctx, state, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (length %d)", stepNumber, len(scenario.Steps), step.Kind, state.length())
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

type scenarioState struct {
	capacity int
	ledger   *ledger.Ledger
}

// book returns the ledger, creating it on first use.
func (s *scenarioState) book() (*ledger.Ledger, error) {
	if s.ledger == nil {
		l, err := ledger.New(s.capacity)
		if err != nil {
			return nil, err
		}
		s.ledger = l
	}
	return s.ledger, nil
}

func (s *scenarioState) length() int {
	if s.ledger == nil {
		return 0
	}
	return s.ledger.Len()
}
