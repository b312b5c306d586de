package scenario

import (
	"fmt"
	"log"
)

// AssertionMode controls how failed expectations are handled.
type AssertionMode int

const (
	// AssertionStrict fails the scenario on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs unmet expectations and keeps going.
	AssertionLogOnly
)

func (m AssertionMode) String() string {
	switch m {
	case AssertionStrict:
		return "strict"
	case AssertionLogOnly:
		return "log-only"
	default:
		return "unknown"
	}
}

// Assertions applies the configured mode to expectation failures.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger

	failures int
}

// Failf reports an unmet expectation. It returns an error in strict mode and
// nil after logging otherwise.
func (a *Assertions) Failf(format string, args ...any) error {
	a.failures++
	err := fmt.Errorf(format, args...)
	if a.Mode == AssertionStrict {
		return err
	}
	if a.Logger != nil {
		a.Logger.Printf("assertion failed: %v", err)
	}
	return nil
}

// Failures returns how many expectations were unmet.
func (a *Assertions) Failures() int {
	return a.failures
}
